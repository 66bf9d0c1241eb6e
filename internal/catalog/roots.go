package catalog

import "database/sql"

// UpsertRoot registers a source root under its derived identifier. The id is
// a pure function of the path, so an existing row is left untouched.
func (s *Store) UpsertRoot(id, path string) error {
	_, err := s.db.Exec(`
		INSERT INTO roots (id, path) VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, path)
	return err
}

// TouchRootScanned records the completion time of a scan of the given root
func (s *Store) TouchRootScanned(id string) error {
	_, err := s.db.Exec(`
		UPDATE roots SET last_scan_at = datetime('now') WHERE id = ?
	`, id)
	return err
}

// GetRoot returns the root with the given identifier, or nil if unknown
func (s *Store) GetRoot(id string) (*Root, error) {
	var r Root
	var lastScan sql.NullString
	err := s.db.QueryRow(`
		SELECT id, path, COALESCE(last_scan_at, '') FROM roots WHERE id = ?
	`, id).Scan(&r.ID, &r.Path, &lastScan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetAllRoots returns every registered source root
func (s *Store) GetAllRoots() ([]*Root, error) {
	rows, err := s.db.Query(`SELECT id, path FROM roots ORDER BY path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roots []*Root
	for rows.Next() {
		var r Root
		if err := rows.Scan(&r.ID, &r.Path); err != nil {
			return nil, err
		}
		roots = append(roots, &r)
	}
	return roots, rows.Err()
}
