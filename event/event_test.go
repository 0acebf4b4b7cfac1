package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/opsdeck/cheatsheets/config"
	"github.com/opsdeck/cheatsheets/constants"
)

func TestNewInProcEventBus(t *testing.T) {
	bus := NewInProcEventBus()
	if bus == nil {
		t.Fatal("expected non-nil event bus")
	}
	if err := bus.Publish("topic", "message"); err != nil {
		t.Errorf("Publish failed: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestEventBus_RoundTrip(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var received []byte
	var wg sync.WaitGroup
	wg.Add(1)

	if err := bus.Subscribe(ctx, "test-topic", func(payload []byte) {
		received = payload
		wg.Done()
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish("test-topic", "hello world"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	wg.Wait()

	if string(received) != "hello world" {
		t.Errorf("expected 'hello world', got %q", received)
	}
}

func TestEventBus_TypedEvents(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan CatalogReloaded, 1)
	err := bus.Subscribe(ctx, constants.TopicCatalogReloaded, func(payload []byte) {
		evt, err := Decode[CatalogReloaded](payload)
		if err != nil {
			t.Errorf("Decode failed: %v", err)
			return
		}
		got <- evt
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := bus.Publish(constants.TopicCatalogReloaded, CatalogReloaded{Generation: 3, Count: 16}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case evt := <-got:
		if evt.Generation != 3 || evt.Count != 16 {
			t.Errorf("unexpected event %+v", evt)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_HandlerPanicKeepsSubscription(t *testing.T) {
	bus := NewInProcEventBus()
	defer bus.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan string, 2)
	err := bus.Subscribe(ctx, constants.TopicCheatsheetViewed, func(payload []byte) {
		evt, _ := Decode[CheatsheetViewed](payload)
		if evt.Key == "boom" {
			panic("handler failure")
		}
		got <- evt.Key
	})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	_ = bus.Publish(constants.TopicCheatsheetViewed, CheatsheetViewed{Key: "boom"})
	_ = bus.Publish(constants.TopicCheatsheetViewed, CheatsheetViewed{Key: "Cloud/AWS"})

	select {
	case key := <-got:
		if key != "Cloud/AWS" {
			t.Errorf("expected Cloud/AWS, got %q", key)
		}
	case <-ctx.Done():
		t.Fatal("subscription stopped after a handler panic")
	}
}

func TestPublish_UnmarshalablePayload(t *testing.T) {
	bus := NewWatermillInMemBus()
	defer bus.Close()
	if err := bus.Publish("test-topic", map[string]any{"invalid": make(chan int)}); err == nil {
		t.Error("Expected error for payload that cannot be encoded")
	}
}

func TestDecode_Invalid(t *testing.T) {
	if _, err := Decode[CatalogReloaded]([]byte("not json")); err == nil {
		t.Error("expected decode error")
	}
}

func TestNewEventBusFromConfig_Memory(t *testing.T) {
	for _, cfg := range []*config.EventConfig{nil, {}, {Driver: "memory"}} {
		bus, err := NewEventBusFromConfig(cfg)
		if err != nil {
			t.Errorf("NewEventBusFromConfig failed: %v", err)
		}
		if bus == nil {
			t.Error("expected non-nil event bus")
		}
	}
}

func TestNewEventBusFromConfig_NATSRequiresURL(t *testing.T) {
	if _, err := NewEventBusFromConfig(&config.EventConfig{Driver: "nats"}); err == nil {
		t.Error("expected error when NATS url is missing")
	}
}

func TestNewEventBusFromConfig_Unknown(t *testing.T) {
	bus, err := NewEventBusFromConfig(&config.EventConfig{Driver: "unknown"})
	if err == nil {
		t.Error("Expected error for unknown driver")
	}
	if bus != nil {
		t.Error("Expected nil event bus for unknown driver")
	}
}
