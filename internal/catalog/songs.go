package catalog

import (
	"database/sql"
	"fmt"
)

// GetSongsByRoot returns all songs of a root keyed by relative path.
// The indexer pre-loads this map once per scan so the unchanged-file fast
// path never touches the database.
func (s *Store) GetSongsByRoot(rootID string) (map[string]*Song, error) {
	rows, err := s.db.Query(`
		SELECT id, root_id, rel_path, codec, bitrate_kbps, duration_ms,
		       size_bytes, mtime_unix, cover_id
		FROM songs
		WHERE root_id = ?
	`, rootID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	songs := make(map[string]*Song)
	for rows.Next() {
		var song Song
		if err := rows.Scan(&song.ID, &song.RootID, &song.RelPath, &song.Codec,
			&song.BitrateKbps, &song.DurationMs, &song.SizeBytes,
			&song.MtimeUnix, &song.CoverID); err != nil {
			return nil, err
		}
		songs[song.RelPath] = &song
	}
	return songs, rows.Err()
}

// GetSong returns the song for (rootID, relPath), or nil if not indexed
func (s *Store) GetSong(rootID, relPath string) (*Song, error) {
	var song Song
	err := s.db.QueryRow(`
		SELECT id, root_id, rel_path, codec, bitrate_kbps, duration_ms,
		       size_bytes, mtime_unix, cover_id
		FROM songs
		WHERE root_id = ? AND rel_path = ?
	`, rootID, relPath).Scan(&song.ID, &song.RootID, &song.RelPath, &song.Codec,
		&song.BitrateKbps, &song.DurationMs, &song.SizeBytes,
		&song.MtimeUnix, &song.CoverID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &song, nil
}

// UpsertSongTx writes a song row inside tx, matching on the (root, rel_path)
// natural key. An existing row is updated in place so its id survives the
// rescan; only a genuinely new key inserts. The song's tag set is fully
// replaced, never merged. Returns the stable song id.
func (s *Store) UpsertSongTx(tx *sql.Tx, song *Song, tags map[string]string) (int64, error) {
	res, err := tx.Exec(`
		UPDATE songs
		SET codec = ?, bitrate_kbps = ?, duration_ms = ?, size_bytes = ?,
		    mtime_unix = ?, cover_id = ?, last_update_at = datetime('now')
		WHERE root_id = ? AND rel_path = ?
	`, song.Codec, song.BitrateKbps, song.DurationMs, song.SizeBytes,
		song.MtimeUnix, song.CoverID, song.RootID, song.RelPath)
	if err != nil {
		return 0, fmt.Errorf("failed to update song: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	var songID int64
	if affected == 0 {
		res, err := tx.Exec(`
			INSERT INTO songs (root_id, rel_path, codec, bitrate_kbps,
			                   duration_ms, size_bytes, mtime_unix, cover_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, song.RootID, song.RelPath, song.Codec, song.BitrateKbps,
			song.DurationMs, song.SizeBytes, song.MtimeUnix, song.CoverID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert song: %w", err)
		}
		songID, err = res.LastInsertId()
		if err != nil {
			return 0, err
		}
	} else {
		err := tx.QueryRow(`
			SELECT id FROM songs WHERE root_id = ? AND rel_path = ?
		`, song.RootID, song.RelPath).Scan(&songID)
		if err != nil {
			return 0, fmt.Errorf("failed to look up song id: %w", err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM tags WHERE song_id = ?`, songID); err != nil {
		return 0, fmt.Errorf("failed to clear tags: %w", err)
	}
	for field, value := range tags {
		if _, err := tx.Exec(`
			INSERT INTO tags (song_id, field, value) VALUES (?, ?, ?)
		`, songID, field, value); err != nil {
			return 0, fmt.Errorf("failed to insert tag %s: %w", field, err)
		}
	}

	return songID, nil
}

// DeleteSongsNotInTx removes songs of a root whose relative path is not in
// keep. Called at the end of a scan so files deleted from the source drop
// out of the catalogue.
func (s *Store) DeleteSongsNotInTx(tx *sql.Tx, rootID string, keep map[string]bool) (int, error) {
	rows, err := tx.Query(`SELECT id, rel_path FROM songs WHERE root_id = ?`, rootID)
	if err != nil {
		return 0, err
	}

	var stale []int64
	for rows.Next() {
		var id int64
		var rel string
		if err := rows.Scan(&id, &rel); err != nil {
			rows.Close()
			return 0, err
		}
		if !keep[rel] {
			stale = append(stale, id)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if _, err := tx.Exec(`DELETE FROM tags WHERE song_id = ?`, id); err != nil {
			return 0, err
		}
		if _, err := tx.Exec(`DELETE FROM songs WHERE id = ?`, id); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// GetSongTags returns the stored tag values for a song as a field->value map
func (s *Store) GetSongTags(songID int64) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT field, value FROM tags WHERE song_id = ?`, songID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := make(map[string]string)
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return nil, err
		}
		tags[field] = value
	}
	return tags, rows.Err()
}

// SearchResult is one song matched by a free-text search
type SearchResult struct {
	Song    Song
	Matched string // the tag value that matched
}

// SearchSongs finds songs whose tag values contain the query substring,
// case-insensitively
func (s *Store) SearchSongs(query string) ([]*SearchResult, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.root_id, s.rel_path, s.codec, s.bitrate_kbps,
		       s.duration_ms, s.size_bytes, s.mtime_unix, s.cover_id,
		       MIN(t.value)
		FROM songs s
		JOIN tags t ON t.song_id = s.id
		WHERE t.value LIKE '%' || ? || '%'
		GROUP BY s.id
		ORDER BY s.root_id, s.rel_path
	`, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.Song.ID, &r.Song.RootID, &r.Song.RelPath,
			&r.Song.Codec, &r.Song.BitrateKbps, &r.Song.DurationMs,
			&r.Song.SizeBytes, &r.Song.MtimeUnix, &r.Song.CoverID,
			&r.Matched); err != nil {
			return nil, err
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// CountSongs returns the number of indexed songs across all roots
func (s *Store) CountSongs() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM songs`).Scan(&count)
	return count, err
}
