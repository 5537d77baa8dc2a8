package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-cluster/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-cluster/internal/protocol"
)

var ErrBusClosed = errors.New("event bus subscription closed")

// EventBus - fans committed events out to every replica through one redis channel.
// Each replica publishes to and subscribes on the same channel, so it also receives its own events.
type EventBus struct {
	logger  *slog.Logger
	client  *redis.Client
	channel string
}

func NewEventBus(logger *slog.Logger, client *redis.Client, channel string) *EventBus {
	return &EventBus{
		logger:  logger.With("component", "event-bus", "channel", channel),
		client:  client,
		channel: channel,
	}
}

// Publish - encodes msg and sends it to the channel.
func (that *EventBus) Publish(ctx context.Context, msg any) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	if err = that.client.Publish(ctx, that.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	metrics.EventsPublished.Inc()

	return nil
}

// Subscribe - registers on the channel and waits for redis to confirm, so no event published afterwards is missed.
func (that *EventBus) Subscribe(ctx context.Context) (*Subscription, error) {
	pubsub := that.client.Subscribe(ctx, that.channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", that.channel, err)
	}

	that.logger.Info("subscribed")

	return &Subscription{
		logger: that.logger,
		pubsub: pubsub,
	}, nil
}

type Subscription struct {
	logger *slog.Logger
	pubsub *redis.PubSub
}

// Relay - passes every received event to handler, unchanged, until ctx is done.
// Payloads that are not valid events are dropped.
func (that *Subscription) Relay(ctx context.Context, handler func(payload []byte)) error {
	messages := that.pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return ErrBusClosed
			}

			payload := []byte(msg.Payload)
			if protocol.DecodeEvent(payload) == nil {
				metrics.EventsDropped.Inc()
				that.logger.Warn("dropping malformed event", "payload", msg.Payload)
				continue
			}

			metrics.EventsReceived.Inc()
			handler(payload)
		}
	}
}

func (that *Subscription) Close() error {
	if err := that.pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription: %w", err)
	}

	return nil
}
