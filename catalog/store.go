package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/event"
	"github.com/opsdeck/cheatsheets/telemetry"
	"github.com/opsdeck/cheatsheets/utils"
)

// ErrNotLoaded is returned by Current before the first successful Reload.
var ErrNotLoaded = errors.New("catalog not loaded")

// Store serves the current catalog snapshot. Readers never block; Reload
// builds a new snapshot off to the side and swaps it in.
type Store struct {
	loader     Loader
	bus        event.EventBus
	current    atomic.Pointer[Catalog]
	generation atomic.Uint64
	reloadMu   sync.Mutex
}

// NewStore creates an empty store. bus may be nil.
func NewStore(loader Loader, bus event.EventBus) *Store {
	return &Store{loader: loader, bus: bus}
}

// NewStaticStore wraps an already built catalog.
func NewStaticStore(c *Catalog) *Store {
	s := &Store{}
	s.publish(c)
	return s
}

// Current returns the snapshot being served.
func (s *Store) Current() (*Catalog, error) {
	c := s.current.Load()
	if c == nil {
		return nil, ErrNotLoaded
	}
	return c, nil
}

// Generation is incremented every time a snapshot is swapped in.
func (s *Store) Generation() uint64 {
	return s.generation.Load()
}

// CanReload reports whether the store has a loader to reload from.
func (s *Store) CanReload() bool {
	return s.loader != nil
}

// Reload loads a fresh snapshot and swaps it in. On error the previous
// snapshot keeps being served.
func (s *Store) Reload(ctx context.Context) (*LoadReport, error) {
	if s.loader == nil {
		return nil, errors.New(constants.ResponseReloadNotSupported)
	}
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	c, report, err := s.loader.Load(ctx)
	telemetry.ObserveReload(err)
	if err != nil {
		return nil, utils.Errorf("catalog reload failed: %w", err)
	}
	gen := s.publish(c)
	utils.InfoCtx(ctx, "catalog loaded",
		"generation", gen,
		"cheatsheets", report.Loaded,
		"skipped", len(report.Skipped),
	)

	if s.bus != nil {
		evt := event.CatalogReloaded{Generation: gen, Count: c.Len()}
		if err := s.bus.Publish(constants.TopicCatalogReloaded, evt); err != nil {
			utils.WarnCtx(ctx, "failed to publish reload event", "error", err)
		}
	}
	return report, nil
}

func (s *Store) publish(c *Catalog) uint64 {
	gen := s.generation.Add(1)
	c.generation = gen
	s.current.Store(c)
	telemetry.SetCatalogSize(c.Len())
	return gen
}
