package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrDestinationRequired is returned when the destination is empty.
var ErrDestinationRequired = errors.New("messaging: destination is required")

// ErrClosed is returned when publishing through a closed publisher.
var ErrClosed = errors.New("messaging: publisher is closed")

// Publisher publishes messages to a destination (topic/subject).
type Publisher interface {
	io.Closer

	// Publish sends a message to the destination.
	Publish(ctx context.Context, destination string, msg Message) (PublishResult, error)
}

// Message is a broker-agnostic message to be published.
type Message struct {
	// Body is the message payload.
	Body []byte

	// Key is used by Kafka for partitioning and by Pub/Sub as ordering key.
	Key []byte

	// Headers are carried as broker headers or attributes when supported.
	Headers map[string]string
}

// PublishResult carries optional broker-specific publish metadata.
type PublishResult struct {
	// MessageID is the broker-assigned message ID, when exposed.
	MessageID string
	// Topic is the destination used for publishing.
	Topic string
	// Timestamp is when the message was handed to the broker.
	Timestamp time.Time
}

func validate(ctx context.Context, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if destination == "" {
		return ErrDestinationRequired
	}
	return nil
}

// Noop drops every message.
type Noop struct{}

// Publish reports success without sending anything.
func (Noop) Publish(ctx context.Context, destination string, _ Message) (PublishResult, error) {
	if err := validate(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }
