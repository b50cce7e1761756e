package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Common errors returned by Queue implementations.
var (
	// ErrNoMessage is returned by Lease when no message is currently visible.
	ErrNoMessage = errors.New("no message available")

	// ErrUnavailable is returned when the backing store cannot serve a
	// queue operation.
	ErrUnavailable = errors.New("queue unavailable")

	// ErrInvalidPayload is returned when a payload cannot be encoded on
	// enqueue or decoded after a lease.
	ErrInvalidPayload = errors.New("invalid message payload")
)

// GenerateImageQueue is the default name of the generation request queue.
const GenerateImageQueue = "generate_image"

// Message is a leased queue message. Its ID and payload never change across
// redeliveries; ReadCount is incremented on every lease.
type Message struct {
	ID         int64
	QueueName  string
	Payload    json.RawMessage
	EnqueuedAt time.Time
	VisibleAt  time.Time
	ReadCount  int
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("%w: message %d: %v", ErrInvalidPayload, m.ID, err)
	}
	return nil
}

// GenerateImageMessage asks the generation worker to produce an image for
// one inspiration image.
type GenerateImageMessage struct {
	InspirationImageID int64 `json:"inspiration_image_id"`
}

// Queue is a durable at-least-once work queue with lease-based reads.
// Version: 1.0
type Queue interface {
	// Enqueue appends a message carrying the JSON encoding of payload and
	// returns its ID. It never waits for consumers.
	// Returns an error wrapping ErrUnavailable if the write cannot be accepted.
	Enqueue(ctx context.Context, queueName string, payload any) (int64, error)

	// Lease makes at most one visible message invisible for the lease
	// duration and returns it. No two callers can hold a lease on the same
	// message at the same time. Returns ErrNoMessage when nothing is visible.
	Lease(ctx context.Context, queueName string, lease time.Duration) (*Message, error)

	// Archive permanently removes a message from the queue. Archiving an
	// already archived or unknown ID is a no-op and returns nil.
	Archive(ctx context.Context, queueName string, msgID int64) error
}

// Stats summarizes the state of one queue.
type Stats struct {
	QueueName     string
	Visible       int64
	Leased        int64
	Archived      int64
	OldestVisible *time.Time
}

// Inspector reports queue depth for operators.
type Inspector interface {
	Stats(ctx context.Context, queueName string) (Stats, error)
}

// EncodePayload marshals payload for storage, passing raw JSON through.
func EncodePayload(payload any) (json.RawMessage, error) {
	switch p := payload.(type) {
	case json.RawMessage:
		if !json.Valid(p) {
			return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
		}
		return p, nil
	case []byte:
		if !json.Valid(p) {
			return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidPayload)
		}
		return json.RawMessage(p), nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return data, nil
}
