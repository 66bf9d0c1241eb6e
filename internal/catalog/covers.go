package catalog

import (
	"database/sql"
	"fmt"
)

// UpsertCoverTx stores a resolved cover image inside tx. Covers are
// immutable once stored: a conflicting insert leaves the existing row alone
// and returns its id.
func (s *Store) UpsertCoverTx(tx *sql.Tx, cover *Cover) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO covers (root_id, rel_path, png_data, width, height)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(root_id, rel_path) DO NOTHING
	`, cover.RootID, cover.RelPath, cover.PNGData, cover.Width, cover.Height)
	if err != nil {
		return 0, fmt.Errorf("failed to insert cover: %w", err)
	}

	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		return res.LastInsertId()
	}

	var id int64
	err = tx.QueryRow(`
		SELECT id FROM covers WHERE root_id = ? AND rel_path = ?
	`, cover.RootID, cover.RelPath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to look up cover id: %w", err)
	}
	return id, nil
}

// GetCover returns the stored cover for (rootID, relPath), or nil
func (s *Store) GetCover(rootID, relPath string) (*Cover, error) {
	var c Cover
	err := s.db.QueryRow(`
		SELECT id, root_id, rel_path, png_data, width, height
		FROM covers
		WHERE root_id = ? AND rel_path = ?
	`, rootID, relPath).Scan(&c.ID, &c.RootID, &c.RelPath, &c.PNGData, &c.Width, &c.Height)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCoverByID returns the stored cover with the given id, or nil
func (s *Store) GetCoverByID(id int64) (*Cover, error) {
	var c Cover
	err := s.db.QueryRow(`
		SELECT id, root_id, rel_path, png_data, width, height
		FROM covers
		WHERE id = ?
	`, id).Scan(&c.ID, &c.RootID, &c.RelPath, &c.PNGData, &c.Width, &c.Height)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCovers returns the number of stored covers
func (s *Store) CountCovers() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM covers`).Scan(&count)
	return count, err
}
