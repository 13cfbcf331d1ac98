// Package history keeps an opt-in SQLite log of completion queries.
// The log is stored in .gosense/history.db. It records what was asked and
// how large the answer was; answers themselves are never stored or reused.
package history

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// FileName is the database file inside the .gosense directory.
const FileName = "history.db"

// Store manages the .gosense/history.db SQLite database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the history database in configDir.
// It initializes the schema if the database is new.
func Open(configDir string) (*Store, error) {
	dbPath := filepath.Join(configDir, FileName)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// LSP and MCP hosts record from concurrent requests.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Clear removes every recorded query.
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM queries"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}
