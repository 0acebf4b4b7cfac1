package api

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/content"
	"github.com/opsdeck/cheatsheets/event"
	"github.com/opsdeck/cheatsheets/exporter"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/storage"
	"github.com/opsdeck/cheatsheets/utils"
)

// Dependencies bundles everything the operations need at runtime.
type Dependencies struct {
	Config   *config.Config
	Store    *catalog.Store
	Renderer *markdown.Renderer
	Storage  storage.Storage
	Bus      event.EventBus
	Blob     blob.BlobStore
}

// NewLoader returns the catalog loader for the configured content source.
func NewLoader(ctx context.Context, cfg *config.Config, blobStore blob.BlobStore) (catalog.Loader, error) {
	categories, err := catalog.LoadCategories(cfg.Content.CategoriesFile)
	if err != nil {
		return nil, utils.Errorf("failed to load categories: %w", err)
	}
	switch cfg.Content.Source {
	case "", constants.ContentSourceEmbedded:
		return catalog.NewFSLoader(content.Library(), categories), nil
	case constants.ContentSourceDir:
		if cfg.Content.Dir == "" {
			return nil, utils.Errorf("content source %q requires a directory", cfg.Content.Source)
		}
		if _, err := os.Stat(cfg.Content.Dir); err != nil {
			return nil, utils.Errorf("content directory: %w", err)
		}
		return catalog.NewFSLoader(os.DirFS(cfg.Content.Dir), categories), nil
	case constants.ContentSourceSnapshot:
		if blobStore == nil {
			return nil, utils.Errorf("content source %q requires a blob store", cfg.Content.Source)
		}
		return exporter.NewSnapshotLoader(blobStore, categories), nil
	default:
		return nil, fmt.Errorf("unsupported content source: %s", cfg.Content.Source)
	}
}

// InitializeDependencies opens storage, the event bus and the blob store,
// loads the catalog and returns a cleanup function that releases them.
func InitializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	store, err := storage.NewStorageFromConfig(&cfg.Storage)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to open storage, using in-memory fallback", "driver", cfg.Storage.Driver, "error", err)
		store = storage.NewMemoryStorage()
	}

	bus, err := event.NewEventBusFromConfig(&cfg.Event)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create event bus, using in-memory fallback", "driver", cfg.Event.Driver, "error", err)
		bus = event.NewInProcEventBus()
	}

	blobStore, err := blob.NewDefaultBlobStore(ctx, &cfg.Blob)
	if err != nil {
		utils.WarnCtx(ctx, "Failed to create blob store", "driver", cfg.Blob.Driver, "error", err)
		blobStore = nil
	}

	cleanup := func() {
		if err := bus.Close(); err != nil {
			utils.Error("Failed to close event bus: %v", err)
		}
		if err := store.Close(); err != nil {
			utils.Error("Failed to close storage: %v", err)
		}
	}

	loader, err := NewLoader(ctx, cfg, blobStore)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	catalogStore := catalog.NewStore(loader, bus)
	if _, err := catalogStore.Reload(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}

	deps := &Dependencies{
		Config:   cfg,
		Store:    catalogStore,
		Renderer: markdown.NewRenderer(time.Duration(cfg.Render.CacheTTLSeconds) * time.Second),
		Storage:  store,
		Bus:      bus,
		Blob:     blobStore,
	}
	return deps, cleanup, nil
}
