// Package announcer forwards domain announcements from the message bus to
// connected websocket clients, giving them a live activity feed.
package announcer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/evently/evently/internal/hub"
	"github.com/evently/evently/internal/pubsub"
)

// Announcement is the JSON frame pushed to websocket clients.
type Announcement struct {
	Topic      string          `json:"topic"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// Service bridges the pub/sub bus and the websocket hub.
type Service struct {
	subscriber pubsub.Subscriber
	hub        *hub.Hub
}

// New creates the announcer service.
func New(subscriber pubsub.Subscriber, h *hub.Hub) *Service {
	return &Service{subscriber: subscriber, hub: h}
}

// Start subscribes to all announcement topics. It returns once the
// subscriptions are active; delivery happens in the background until the
// context is canceled.
func (s *Service) Start(ctx context.Context) error {
	topics := []string{
		pubsub.TopicUserSignedUp,
		pubsub.TopicEventCreated,
		pubsub.TopicRegistrationCreated,
		pubsub.TopicRegistrationCancelled,
	}
	for _, topic := range topics {
		if err := s.subscriber.Subscribe(ctx, topic, s.handle); err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
	}
	return nil
}

func (s *Service) handle(ctx context.Context, msg pubsub.Message) error {
	frame, err := json.Marshal(Announcement{
		Topic:      msg.Topic,
		OccurredAt: time.Now().UTC(),
		Data:       msg.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode announcement: %w", err)
	}

	select {
	case s.hub.Broadcast <- frame:
	case <-ctx.Done():
		return ctx.Err()
	}
	slog.Debug("Announcement broadcast", "topic", msg.Topic)
	return nil
}
