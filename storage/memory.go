package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opsdeck/cheatsheets/model"
)

// MemoryStorage implements Storage in-memory (for tests and ephemeral servers).
type MemoryStorage struct {
	mu    sync.Mutex
	saved map[string][]model.SavedItem // clientID -> items in save order
	views map[string]int64
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		saved: make(map[string][]model.SavedItem),
		views: make(map[string]int64),
	}
}

func (m *MemoryStorage) SaveItem(ctx context.Context, clientID, item string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved[clientID] {
		if s.Item == item {
			return nil
		}
	}
	m.saved[clientID] = append(m.saved[clientID], model.SavedItem{
		ClientID: clientID,
		Item:     item,
		SavedAt:  time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStorage) RemoveItem(ctx context.Context, clientID, item string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.saved[clientID]
	for i, s := range items {
		if s.Item == item {
			m.saved[clientID] = append(items[:i:i], items[i+1:]...)
			break
		}
	}
	if len(m.saved[clientID]) == 0 {
		delete(m.saved, clientID)
	}
	return nil
}

func (m *MemoryStorage) ListSaved(ctx context.Context, clientID string) ([]model.SavedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SavedItem, len(m.saved[clientID]))
	copy(out, m.saved[clientID])
	return out, nil
}

func (m *MemoryStorage) IsSaved(ctx context.Context, clientID, item string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved[clientID] {
		if s.Item == item {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) RecordView(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.views[key]++
	return nil
}

func (m *MemoryStorage) TopViewed(ctx context.Context, limit int) ([]model.ViewCount, error) {
	m.mu.Lock()
	out := make([]model.ViewCount, 0, len(m.views))
	for k, v := range m.views {
		out = append(out, model.ViewCount{Key: k, Views: v})
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Views != out[j].Views {
			return out[i].Views > out[j].Views
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStorage) Close() error {
	return nil
}
