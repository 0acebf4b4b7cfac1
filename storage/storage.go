package storage

import (
	"context"
	"fmt"

	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/model"
)

// Storage persists per-client saved items and cheatsheet view counts.
type Storage interface {
	// SaveItem adds item to the client's saved list. Saving twice is a no-op
	// and keeps the original position.
	SaveItem(ctx context.Context, clientID, item string) error
	// RemoveItem deletes item from the client's saved list, if present.
	RemoveItem(ctx context.Context, clientID, item string) error
	// ListSaved returns the client's saved items in the order they were saved.
	ListSaved(ctx context.Context, clientID string) ([]model.SavedItem, error)
	IsSaved(ctx context.Context, clientID, item string) (bool, error)
	RecordView(ctx context.Context, key string) error
	// TopViewed returns view counts ordered by views desc, then key. A
	// non-positive limit returns every row.
	TopViewed(ctx context.Context, limit int) ([]model.ViewCount, error)
	Close() error
}

// NewStorageFromConfig opens the storage driver named in cfg. Supported:
// memory, sqlite (default), postgres.
func NewStorageFromConfig(cfg *config.StorageConfig) (Storage, error) {
	if cfg == nil {
		return NewMemoryStorage(), nil
	}
	switch cfg.Driver {
	case constants.StorageDriverMemory:
		return NewMemoryStorage(), nil
	case "", constants.StorageDriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = config.DefaultSQLiteDSN
		}
		return NewSqliteStorage(dsn)
	case constants.StorageDriverPostgres:
		return NewPostgresStorage(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
