package history

// schemaSQL defines the history database.
//   - queries: one row per completion request
const schemaSQL = `
CREATE TABLE IF NOT EXISTS queries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_path TEXT NOT NULL,
    raw_path TEXT NOT NULL DEFAULT '',
    kind TEXT NOT NULL,
    byte_offset INTEGER NOT NULL DEFAULT 0,
    sdk_count INTEGER NOT NULL DEFAULT 0,
    local_count INTEGER NOT NULL DEFAULT 0,
    item_count INTEGER NOT NULL DEFAULT 0,
    duration_us INTEGER NOT NULL DEFAULT 0,
    queried_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_queries_file ON queries(file_path);
CREATE INDEX IF NOT EXISTS idx_queries_kind ON queries(kind);
`

func (s *Store) initSchema() error {
	_, err := s.db.Exec(schemaSQL)
	return err
}
