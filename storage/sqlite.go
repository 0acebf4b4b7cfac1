package storage

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/opsdeck/cheatsheets/utils"
	_ "modernc.org/sqlite"
)

// SqliteStorage implements Storage using SQLite as the backend.
type SqliteStorage struct {
	*sqlStorage
}

var _ Storage = (*SqliteStorage)(nil)

func NewSqliteStorage(dsn string) (*SqliteStorage, error) {
	// Only create parent directories if not using in-memory SQLite (":memory:").
	if dsn != ":memory:" && dsn != "" {
		dir := filepath.Dir(dsn)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, utils.Errorf("failed to create db directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	inner, err := newSQLStorage(db, false)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &SqliteStorage{sqlStorage: inner}, nil
}
