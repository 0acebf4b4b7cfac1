package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
)

const defaultNATSClusterID = "cheats"

type EventBus interface {
	Publish(topic string, payload any) error
	Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error
	Close() error
}

// CatalogReloaded is published on constants.TopicCatalogReloaded after a new
// catalog snapshot is swapped in.
type CatalogReloaded struct {
	Generation uint64 `json:"generation"`
	Count      int    `json:"count"`
}

// CheatsheetViewed is published on constants.TopicCheatsheetViewed whenever a
// cheatsheet page or API document is served.
type CheatsheetViewed struct {
	Key      string `json:"key"`
	ClientID string `json:"clientId,omitempty"`
}

// NewInProcEventBus returns a new in-memory event bus. Used when event config driver=="memory" or omitted.
func NewInProcEventBus() *WatermillEventBus {
	return NewWatermillInMemBus()
}

// NewEventBusFromConfig returns an EventBus based on config. Supported: memory (default), nats (with url).
func NewEventBusFromConfig(cfg *config.EventConfig) (EventBus, error) {
	if cfg == nil || cfg.Driver == "" || cfg.Driver == constants.EventDriverMemory {
		return NewWatermillInMemBus(), nil
	}
	switch cfg.Driver {
	case constants.EventDriverNATS:
		if cfg.URL == "" {
			return nil, fmt.Errorf("NATS driver requires url")
		}
		clusterID := cfg.ClusterID
		if clusterID == "" {
			clusterID = defaultNATSClusterID
		}
		bus, err := NewWatermillNATSBus(clusterID, cfg.URL)
		if err != nil {
			return nil, err
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unsupported event bus driver: %s", cfg.Driver)
	}
}

// Decode unmarshals a JSON event payload into T.
func Decode[T any](payload []byte) (T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, fmt.Errorf("decode event: %w", err)
	}
	return v, nil
}
