package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStorage implements Storage on PostgreSQL through lib/pq.
type PostgresStorage struct {
	*sqlStorage
}

var _ Storage = (*PostgresStorage)(nil)

func NewPostgresStorage(dsn string) (*PostgresStorage, error) {
	if dsn == "" {
		return nil, errors.New("postgres storage requires a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	inner, err := newSQLStorage(db, true)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStorage{sqlStorage: inner}, nil
}
