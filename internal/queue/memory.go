package queue

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Clock returns the current time. It is swapped in tests to expire leases
// without sleeping.
type Clock func() time.Time

// MemoryQueue is a mutex-guarded in-process Queue. Lease visibility follows
// the same rules as the database queue. Archived messages are dropped and
// only counted.
type MemoryQueue struct {
	mu       sync.Mutex
	nextID   int64
	messages map[string]map[int64]*Message
	archived map[string]int64
	now      Clock
	logger   *slog.Logger
}

// MemoryOption configures a MemoryQueue.
type MemoryOption func(*MemoryQueue)

// WithClock sets the time source used for lease expiry.
func WithClock(clock Clock) MemoryOption {
	return func(q *MemoryQueue) {
		q.now = clock
	}
}

// NewMemoryQueue creates an empty in-process queue.
func NewMemoryQueue(logger *slog.Logger, opts ...MemoryOption) *MemoryQueue {
	if logger == nil {
		logger = slog.Default()
	}

	q := &MemoryQueue{
		messages: make(map[string]map[int64]*Message),
		archived: make(map[string]int64),
		now:      time.Now,
		logger:   logger.With(slog.String("component", "memory_queue")),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

var (
	_ Queue     = (*MemoryQueue)(nil)
	_ Inspector = (*MemoryQueue)(nil)
)

// Enqueue implements Queue.Enqueue.
func (q *MemoryQueue) Enqueue(ctx context.Context, queueName string, payload any) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	data, err := EncodePayload(payload)
	if err != nil {
		return 0, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	now := q.now()
	msg := &Message{
		ID:         q.nextID,
		QueueName:  queueName,
		Payload:    data,
		EnqueuedAt: now,
		VisibleAt:  now,
	}

	if q.messages[queueName] == nil {
		q.messages[queueName] = make(map[int64]*Message)
	}
	q.messages[queueName][msg.ID] = msg

	q.logger.Debug("message enqueued",
		"queue", queueName,
		"msg_id", msg.ID)

	return msg.ID, nil
}

// Lease implements Queue.Lease. The visible message with the lowest ID is
// returned first.
func (q *MemoryQueue) Lease(ctx context.Context, queueName string, lease time.Duration) (*Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	var next *Message
	for _, msg := range q.messages[queueName] {
		if msg.VisibleAt.After(now) {
			continue
		}
		if next == nil || msg.ID < next.ID {
			next = msg
		}
	}

	if next == nil {
		return nil, ErrNoMessage
	}

	next.VisibleAt = now.Add(lease)
	next.ReadCount++

	leased := *next
	leased.Payload = append([]byte(nil), next.Payload...)
	return &leased, nil
}

// Archive implements Queue.Archive.
func (q *MemoryQueue) Archive(ctx context.Context, queueName string, msgID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.messages[queueName][msgID]; !ok {
		q.logger.Debug("archive of unknown or archived message ignored",
			"queue", queueName,
			"msg_id", msgID)
		return nil
	}

	delete(q.messages[queueName], msgID)
	q.archived[queueName]++
	return nil
}

// Stats implements Inspector.Stats.
func (q *MemoryQueue) Stats(ctx context.Context, queueName string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	stats := Stats{QueueName: queueName, Archived: q.archived[queueName]}
	now := q.now()

	msgs := make([]*Message, 0, len(q.messages[queueName]))
	for _, msg := range q.messages[queueName] {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].ID < msgs[j].ID })

	for _, msg := range msgs {
		if msg.VisibleAt.After(now) {
			stats.Leased++
			continue
		}
		stats.Visible++
		if stats.OldestVisible == nil {
			enqueued := msg.EnqueuedAt
			stats.OldestVisible = &enqueued
		}
	}

	return stats, nil
}
