package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/imagine/internal/catalog"
	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/queue"
	"github.com/phrazzld/imagine/internal/store"
)

// CollectResult summarizes one collector run.
type CollectResult struct {
	Fetched  int
	Skipped  int
	Stored   int
	Enqueued int
	Failed   int
}

// Collector fetches catalog candidates, stores the ones that carry a
// description, and enqueues one generation request per stored image.
type Collector struct {
	fetcher      Fetcher
	inspirations store.InspirationStore
	queue        queue.Queue
	queueName    string
	logger       *slog.Logger
}

// NewCollector creates a Collector publishing to queueName.
func NewCollector(
	fetcher Fetcher,
	inspirations store.InspirationStore,
	q queue.Queue,
	queueName string,
	logger *slog.Logger,
) (*Collector, error) {
	if fetcher == nil {
		return nil, ErrNilFetcher
	}
	if inspirations == nil {
		return nil, ErrNilStore
	}
	if q == nil {
		return nil, ErrNilQueue
	}
	if queueName == "" {
		queueName = queue.GenerateImageQueue
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		fetcher:      fetcher,
		inspirations: inspirations,
		queue:        q,
		queueName:    queueName,
		logger:       logger.With(slog.String("component", "collector")),
	}, nil
}

// Collect runs one tick. Only a failed fetch is returned as an error, in
// which case nothing was written. Failures on individual candidates are
// logged and counted without affecting the rest of the batch.
func (c *Collector) Collect(ctx context.Context) (CollectResult, error) {
	var result CollectResult

	candidates, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "catalog fetch failed, abandoning tick",
			slog.String("error", err.Error()))
		return result, fmt.Errorf("collect: %w", err)
	}
	result.Fetched = len(candidates)

	for _, cand := range candidates {
		switch outcome := c.collectOne(ctx, cand); outcome {
		case outcomeSkipped:
			result.Skipped++
		case outcomeStoreFailed:
			result.Failed++
		case outcomeEnqueueFailed:
			result.Stored++
			result.Failed++
		case outcomeEnqueued:
			result.Stored++
			result.Enqueued++
		}
	}

	c.logger.InfoContext(ctx, "collector tick finished",
		slog.Int("fetched", result.Fetched),
		slog.Int("skipped", result.Skipped),
		slog.Int("stored", result.Stored),
		slog.Int("enqueued", result.Enqueued),
		slog.Int("failed", result.Failed))

	return result, nil
}

type collectOutcome int

const (
	outcomeSkipped collectOutcome = iota
	outcomeStoreFailed
	outcomeEnqueueFailed
	outcomeEnqueued
)

func (c *Collector) collectOne(ctx context.Context, cand catalog.Candidate) collectOutcome {
	log := c.logger.With(slog.String("source_id", cand.ID))
	ctx = logger.WithLogger(ctx, log)

	img, err := domain.NewInspirationImage(cand.ID, cand.URLs.Regular, cand.Description, cand.AltDescription)
	if err != nil {
		log.WarnContext(ctx, "skipping catalog image", slog.String("error", err.Error()))
		return outcomeSkipped
	}

	if err := c.inspirations.Create(ctx, img); err != nil {
		log.ErrorContext(ctx, "failed to store inspiration image", slog.String("error", err.Error()))
		return outcomeStoreFailed
	}

	msgID, err := c.queue.Enqueue(ctx, c.queueName, queue.GenerateImageMessage{InspirationImageID: img.ID})
	if err != nil {
		// The stored image stays; a later tick does not retry it.
		log.ErrorContext(ctx, "failed to enqueue generation request",
			slog.Int64("inspiration_id", img.ID),
			slog.String("error", err.Error()))
		return outcomeEnqueueFailed
	}

	log.DebugContext(ctx, "generation request enqueued",
		slog.Int64("inspiration_id", img.ID),
		slog.Int64("msg_id", msgID))
	return outcomeEnqueued
}
