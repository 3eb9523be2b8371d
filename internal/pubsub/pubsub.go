// Package pubsub carries domain announcements between the HTTP layer and
// background subscribers over an in-process message bus.
package pubsub

import (
	"context"
)

// Topics published by the application.
const (
	TopicUserSignedUp          = "user.signed_up"
	TopicEventCreated          = "event.created"
	TopicRegistrationCreated   = "event.registration.created"
	TopicRegistrationCancelled = "event.registration.cancelled"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g., "event.created").
	Topic string
	// UserID identifies the user who initiated the message, when known.
	UserID string
	// Payload contains the raw message data (JSON).
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts listening to the given topic, processing messages
	// with the handler. The subscription runs until the context is canceled.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}
