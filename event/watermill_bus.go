package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	stan "github.com/nats-io/stan.go"
	"github.com/opsdeck/cheatsheets/utils"
)

// WatermillEventBus satisfies our EventBus interface using Watermill.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// NewWatermillInMemBus returns a Watermill-based, in-memory bus.
func NewWatermillInMemBus() *WatermillEventBus {
	logger := watermill.NewStdLogger(false, false)
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 100}, logger)
	return &WatermillEventBus{publisher: ps, subscriber: ps}
}

// NewWatermillNATSBus returns a NATS streaming backed bus. Every process
// gets its own client id so several servers can share a cluster.
func NewWatermillNATSBus(clusterID, url string) (*WatermillEventBus, error) {
	logger := watermill.NewStdLogger(false, false)
	clientID := "cheats-" + watermill.NewShortUUID()
	stanOpts := []stan.Option{stan.NatsURL(url)}

	pub, err := nats.NewStreamingPublisher(nats.StreamingPublisherConfig{
		ClusterID:   clusterID,
		ClientID:    clientID + "-pub",
		StanOptions: stanOpts,
		Marshaler:   nats.GobMarshaler{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("nats publisher: %w", err)
	}
	sub, err := nats.NewStreamingSubscriber(nats.StreamingSubscriberConfig{
		ClusterID:      clusterID,
		ClientID:       clientID + "-sub",
		StanOptions:    stanOpts,
		Unmarshaler:    nats.GobMarshaler{},
		CloseTimeout:   30 * time.Second,
		AckWaitTimeout: 30 * time.Second,
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("nats subscriber: %w", err)
	}
	return &WatermillEventBus{publisher: pub, subscriber: sub}, nil
}

// Publish sends payload on topic. Byte slices and strings are sent as is,
// anything else is encoded as JSON.
func (b *WatermillEventBus) Publish(topic string, payload any) error {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		data, err = json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
		}
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	return b.publisher.Publish(topic, msg)
}

// Subscribe delivers every message on topic to handler until ctx is done.
func (b *WatermillEventBus) Subscribe(ctx context.Context, topic string, handler func(payload []byte)) error {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	go func() {
		for msg := range ch {
			func() {
				defer msg.Ack()
				defer func() {
					if r := recover(); r != nil {
						utils.Error("event handler for %s panicked: %v", topic, r)
					}
				}()
				handler(msg.Payload)
			}()
		}
	}()
	return nil
}

// Close shuts down the publisher and subscriber.
func (b *WatermillEventBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}
	if any(b.subscriber) != any(b.publisher) {
		return b.subscriber.Close()
	}
	return nil
}
