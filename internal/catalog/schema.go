package catalog

// Schema v1 - initial catalogue schema
//
// songs carries one row per indexed audio file. The (root_id, rel_path) pair
// is the natural key; the autoincrement id is the stable identity that tags
// and covers reference, so upserts must never recreate a row for an
// unchanged key.
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Configured source roots, keyed by their derived short identifier
CREATE TABLE IF NOT EXISTS roots (
  id TEXT PRIMARY KEY,
  path TEXT UNIQUE NOT NULL,
  last_scan_at DATETIME
);

-- Resolved cover images, keyed by (root, image path relative to root)
CREATE TABLE IF NOT EXISTS covers (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  root_id TEXT NOT NULL REFERENCES roots(id) ON DELETE CASCADE,
  rel_path TEXT NOT NULL,
  png_data BLOB,
  width INTEGER,
  height INTEGER,
  UNIQUE(root_id, rel_path)
);

-- Indexed audio files
CREATE TABLE IF NOT EXISTS songs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  root_id TEXT NOT NULL REFERENCES roots(id) ON DELETE CASCADE,
  rel_path TEXT NOT NULL,
  codec TEXT,
  bitrate_kbps INTEGER,
  duration_ms INTEGER,
  size_bytes INTEGER,
  mtime_unix INTEGER,
  cover_id INTEGER REFERENCES covers(id),
  first_seen_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  last_update_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(root_id, rel_path)
);

CREATE INDEX IF NOT EXISTS idx_songs_root ON songs(root_id);

-- Tag values, fully replaced whenever the owning song is rescanned
CREATE TABLE IF NOT EXISTS tags (
  song_id INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
  field TEXT NOT NULL,
  value TEXT
);

CREATE INDEX IF NOT EXISTS idx_tags_song ON tags(song_id);
CREATE INDEX IF NOT EXISTS idx_tags_value ON tags(value);
`
