package api

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/opsdeck/cheatsheets/catalog"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/event"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/model"
	"github.com/opsdeck/cheatsheets/storage"
	"github.com/opsdeck/cheatsheets/telemetry"
	"github.com/opsdeck/cheatsheets/utils"
)

var (
	// ErrInvalidArgument is returned for missing or malformed operation arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrReloadUnsupported is returned by Reload when the catalog has no loader.
	ErrReloadUnsupported = errors.New(constants.ResponseReloadNotSupported)
)

const statsTopViewed = 10

// CheatsheetService is the full operation surface shared by HTTP, CLI and MCP.
type CheatsheetService interface {
	ListCategories(ctx context.Context) ([]model.CategorySummary, error)
	GetCategory(ctx context.Context, name string) (*CategoryDetail, error)
	ListCheatsheets(ctx context.Context, q catalog.ListQuery) (model.Page[model.CheatsheetMeta], error)
	GetCheatsheet(ctx context.Context, category, slug string) (*model.RenderedCheatsheet, error)
	SearchCheatsheets(ctx context.Context, query string, limit int) ([]model.CheatsheetMeta, error)
	FeaturedCheatsheets(ctx context.Context, filter string, limit int) ([]model.CheatsheetMeta, error)
	RelatedCheatsheets(ctx context.Context, category, slug string, limit int) ([]model.CheatsheetMeta, error)
	ListSaved(ctx context.Context, clientID string) ([]string, error)
	SaveItem(ctx context.Context, clientID, item string) ([]string, error)
	RemoveItem(ctx context.Context, clientID, item string) ([]string, error)
	IsSaved(ctx context.Context, clientID, item string) (bool, error)
	Stats(ctx context.Context) (*CatalogStats, error)
	Reload(ctx context.Context) (*ReloadResult, error)
}

// CategoryDetail is a category with the metadata of its cheatsheets.
type CategoryDetail struct {
	model.CategorySummary
	Cheatsheets []model.CheatsheetMeta `json:"cheatsheets"`
}

// CatalogStats summarizes the catalog being served.
type CatalogStats struct {
	Generation  uint64            `json:"generation"`
	Categories  int               `json:"categories"`
	Cheatsheets int               `json:"cheatsheets"`
	CachedPages int               `json:"cachedPages"`
	TopViewed   []model.ViewCount `json:"topViewed"`
}

// ReloadResult reports the outcome of a catalog reload.
type ReloadResult struct {
	Generation uint64         `json:"generation"`
	Count      int            `json:"count"`
	Skipped    []catalog.Skip `json:"skipped,omitempty"`
}

// Service implements CheatsheetService over a catalog store.
type Service struct {
	store    *catalog.Store
	renderer *markdown.Renderer
	storage  storage.Storage
	bus      event.EventBus

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Compile-time check.
var _ CheatsheetService = (*Service)(nil)

// NewService creates a service over deps. rng drives the "trending" preset;
// nil seeds one from the clock.
func NewService(deps *Dependencies, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = markdown.NewRenderer(0)
	}
	return &Service{
		store:    deps.Store,
		renderer: renderer,
		storage:  deps.Storage,
		bus:      deps.Bus,
		rng:      rng,
	}
}

// Subscribe attaches the view counter and the render cache invalidation to
// the event bus. Handlers stop when ctx is cancelled.
func (s *Service) Subscribe(ctx context.Context) error {
	if s.bus == nil {
		return nil
	}
	if err := s.bus.Subscribe(ctx, constants.TopicCheatsheetViewed, func(payload []byte) {
		viewed, err := event.Decode[event.CheatsheetViewed](payload)
		if err != nil {
			utils.Warn("Dropping malformed view event: %v", err)
			return
		}
		telemetry.ObserveView()
		if s.storage == nil {
			return
		}
		if err := s.storage.RecordView(ctx, viewed.Key); err != nil {
			utils.Warn("Failed to record view of %s: %v", viewed.Key, err)
		}
	}); err != nil {
		return utils.Errorf("subscribe %s: %w", constants.TopicCheatsheetViewed, err)
	}
	if err := s.bus.Subscribe(ctx, constants.TopicCatalogReloaded, func(payload []byte) {
		reloaded, err := event.Decode[event.CatalogReloaded](payload)
		if err != nil {
			utils.Warn("Dropping malformed reload event: %v", err)
			return
		}
		utils.Debug("Flushing render cache for generation %d", reloaded.Generation)
		s.renderer.Flush()
	}); err != nil {
		return utils.Errorf("subscribe %s: %w", constants.TopicCatalogReloaded, err)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]model.CategorySummary, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return c.CategorySummaries(), nil
}

func (s *Service) GetCategory(ctx context.Context, name string) (*CategoryDetail, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	cat, err := c.Category(name)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", name, err)
	}
	sheets, err := c.ByCategory(cat.Name)
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", name, err)
	}
	return &CategoryDetail{
		CategorySummary: model.CategorySummary{Category: cat, ToolCount: len(sheets)},
		Cheatsheets:     catalog.Metas(sheets),
	}, nil
}

func (s *Service) ListCheatsheets(ctx context.Context, q catalog.ListQuery) (model.Page[model.CheatsheetMeta], error) {
	c, err := s.store.Current()
	if err != nil {
		return model.Page[model.CheatsheetMeta]{}, err
	}
	return c.List(q)
}

// GetCheatsheet renders one cheatsheet and publishes a view event for it.
func (s *Service) GetCheatsheet(ctx context.Context, category, slug string) (*model.RenderedCheatsheet, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	sheet, err := c.Get(category, slug)
	if err != nil {
		return nil, fmt.Errorf("cheatsheet %s/%s: %w", category, slug, err)
	}
	rendered, err := s.renderer.Cheatsheet(c.Generation(), sheet)
	if err != nil {
		return nil, err
	}
	s.publishView(ctx, sheet.Key())
	return rendered, nil
}

func (s *Service) publishView(ctx context.Context, key string) {
	if s.bus == nil {
		return
	}
	clientID, _ := ClientIDFromContext(ctx)
	if err := s.bus.Publish(constants.TopicCheatsheetViewed, event.CheatsheetViewed{Key: key, ClientID: clientID}); err != nil {
		utils.WarnCtx(ctx, "failed to publish view event", "key", key, "error", err)
	}
}

func (s *Service) SearchCheatsheets(ctx context.Context, query string, limit int) ([]model.CheatsheetMeta, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return c.Search(query, limit), nil
}

func (s *Service) FeaturedCheatsheets(ctx context.Context, filter string, limit int) ([]model.CheatsheetMeta, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return c.Featured(filter, limit, s.rng)
}

func (s *Service) RelatedCheatsheets(ctx context.Context, category, slug string, limit int) ([]model.CheatsheetMeta, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	sheet, err := c.Get(category, slug)
	if err != nil {
		return nil, fmt.Errorf("cheatsheet %s/%s: %w", category, slug, err)
	}
	if limit < 1 {
		limit = constants.DefaultRelated
	}
	return catalog.Metas(c.Related(sheet, limit)), nil
}

func (s *Service) ListSaved(ctx context.Context, clientID string) ([]string, error) {
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrInvalidArgument)
	}
	items, err := s.storage.ListSaved(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Item)
	}
	return out, nil
}

// SaveItem bookmarks a category name or a category/slug key for clientID and
// returns the updated list.
func (s *Service) SaveItem(ctx context.Context, clientID, item string) ([]string, error) {
	key, err := s.canonicalItem(item)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrInvalidArgument)
	}
	if err := s.storage.SaveItem(ctx, clientID, key); err != nil {
		return nil, err
	}
	return s.ListSaved(ctx, clientID)
}

// RemoveItem drops item from clientID's list. Unknown items are ignored.
func (s *Service) RemoveItem(ctx context.Context, clientID, item string) ([]string, error) {
	key := strings.TrimSpace(item)
	if key == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, constants.ResponseMissingItem)
	}
	if canonical, err := s.canonicalItem(key); err == nil {
		key = canonical
	}
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client id", ErrInvalidArgument)
	}
	if err := s.storage.RemoveItem(ctx, clientID, key); err != nil {
		return nil, err
	}
	return s.ListSaved(ctx, clientID)
}

func (s *Service) IsSaved(ctx context.Context, clientID, item string) (bool, error) {
	if clientID == "" {
		return false, nil
	}
	key := strings.TrimSpace(item)
	if canonical, err := s.canonicalItem(key); err == nil {
		key = canonical
	}
	return s.storage.IsSaved(ctx, clientID, key)
}

// canonicalItem resolves item to the catalog's spelling: a category name, or
// the key of a cheatsheet.
func (s *Service) canonicalItem(item string) (string, error) {
	item = strings.Trim(strings.TrimSpace(item), "/")
	if item == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidArgument, constants.ResponseMissingItem)
	}
	c, err := s.store.Current()
	if err != nil {
		return "", err
	}
	category, slug, isSheet := strings.Cut(item, "/")
	if !isSheet {
		cat, err := c.Category(category)
		if err != nil {
			return "", fmt.Errorf("category %q: %w", category, err)
		}
		return cat.Name, nil
	}
	sheet, err := c.Get(category, slug)
	if err != nil {
		return "", fmt.Errorf("cheatsheet %s: %w", item, err)
	}
	return sheet.Key(), nil
}

func (s *Service) Stats(ctx context.Context) (*CatalogStats, error) {
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	stats := &CatalogStats{
		Generation:  c.Generation(),
		Categories:  len(c.Categories()),
		Cheatsheets: c.Len(),
		CachedPages: s.renderer.CachedItems(),
		TopViewed:   []model.ViewCount{},
	}
	if s.storage != nil {
		top, err := s.storage.TopViewed(ctx, statsTopViewed)
		if err != nil {
			return nil, err
		}
		if top != nil {
			stats.TopViewed = top
		}
	}
	return stats, nil
}

func (s *Service) Reload(ctx context.Context) (*ReloadResult, error) {
	if !s.store.CanReload() {
		return nil, ErrReloadUnsupported
	}
	report, err := s.store.Reload(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Current()
	if err != nil {
		return nil, err
	}
	return &ReloadResult{
		Generation: c.Generation(),
		Count:      c.Len(),
		Skipped:    report.Skipped,
	}, nil
}
