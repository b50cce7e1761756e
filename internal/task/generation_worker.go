package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/generation"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/queue"
	"github.com/phrazzld/imagine/internal/store"
)

// errArchive marks a request that was handled but could not be archived.
var errArchive = errors.New("archive failed")

// WorkerConfig holds the generation worker's queue settings.
type WorkerConfig struct {
	// QueueName is the queue generation requests are leased from.
	QueueName string

	// Lease is how long a leased request stays invisible to other workers.
	// Handling a request is cut off when its lease runs out.
	Lease time.Duration

	// IdleBackoff is how long the worker sleeps when the queue is empty or
	// cannot be reached.
	IdleBackoff time.Duration

	// MaxDeliveries archives a request as dead-lettered once it has been
	// delivered more times than this. Zero means unbounded.
	MaxDeliveries int
}

// DefaultWorkerConfig returns a WorkerConfig with the standard settings.
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		QueueName:   queue.GenerateImageQueue,
		Lease:       60 * time.Second,
		IdleBackoff: 100 * time.Second,
	}
}

// GenerationWorker consumes generation requests one at a time.
type GenerationWorker struct {
	queue        queue.Queue
	inspirations store.InspirationStore
	generated    store.GeneratedStore
	generator    generation.Generator
	uploader     Uploader
	config       WorkerConfig
	sleep        func(ctx context.Context, d time.Duration)
	logger       *slog.Logger
}

// NewGenerationWorker creates a GenerationWorker.
func NewGenerationWorker(
	q queue.Queue,
	inspirations store.InspirationStore,
	generated store.GeneratedStore,
	generator generation.Generator,
	uploader Uploader,
	config WorkerConfig,
	logger *slog.Logger,
) (*GenerationWorker, error) {
	if q == nil {
		return nil, ErrNilQueue
	}
	if inspirations == nil || generated == nil {
		return nil, ErrNilStore
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if uploader == nil {
		return nil, ErrNilUploader
	}

	defaults := DefaultWorkerConfig()
	if config.QueueName == "" {
		config.QueueName = defaults.QueueName
	}
	if config.Lease <= 0 {
		config.Lease = defaults.Lease
	}
	if config.IdleBackoff <= 0 {
		config.IdleBackoff = defaults.IdleBackoff
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationWorker{
		queue:        q,
		inspirations: inspirations,
		generated:    generated,
		generator:    generator,
		uploader:     uploader,
		config:       config,
		sleep:        sleepContext,
		logger:       logger.With(slog.String("component", "generation_worker")),
	}, nil
}

// Run leases and processes requests until ctx is cancelled. A request that
// is being processed when ctx is cancelled is finished first.
func (w *GenerationWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "generation worker started",
		slog.String("queue", w.config.QueueName),
		slog.Duration("lease", w.config.Lease))

	for ctx.Err() == nil {
		processed, err := w.ProcessNext(ctx)
		switch {
		case !processed && ctx.Err() != nil:
			// Shutting down.
		case !processed && err != nil:
			w.logger.ErrorContext(ctx, "lease failed, backing off",
				slog.String("error", err.Error()),
				slog.Duration("backoff", w.config.IdleBackoff))
			w.sleep(ctx, w.config.IdleBackoff)
		case errors.Is(err, errArchive):
			w.logger.ErrorContext(ctx, "archive failed, request will be redelivered",
				slog.String("error", err.Error()))
		case err != nil:
			// Left unarchived; redelivered after the lease expires.
			w.logger.ErrorContext(ctx, "generation request failed", slog.String("error", err.Error()))
		case !processed:
			w.logger.DebugContext(ctx, "queue empty, sleeping", slog.Duration("backoff", w.config.IdleBackoff))
			w.sleep(ctx, w.config.IdleBackoff)
		}
	}

	w.logger.InfoContext(ctx, "generation worker stopped")
	return nil
}

// ProcessNext leases one request and handles it. It reports false when no
// request was leased, with ctx's error if ctx is done and an error wrapping
// queue.ErrUnavailable if the lease failed. When it reports true, an error
// means the request was left for redelivery.
//
// Cancelling ctx does not interrupt a leased request; handling is bounded
// by the lease instead.
func (w *GenerationWorker) ProcessNext(ctx context.Context) (bool, error) {
	msg, err := w.queue.Lease(ctx, w.config.QueueName, w.config.Lease)
	if errors.Is(err, queue.ErrNoMessage) {
		return false, nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		if errors.Is(err, queue.ErrUnavailable) {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", queue.ErrUnavailable, err)
	}

	handleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.Lease)
	defer cancel()

	return true, w.handle(handleCtx, msg)
}

func (w *GenerationWorker) handle(ctx context.Context, msg *queue.Message) error {
	log := w.logger.With(
		slog.Int64("msg_id", msg.ID),
		slog.Int("read_count", msg.ReadCount),
	)
	ctx = logger.WithLogger(ctx, log)

	if w.config.MaxDeliveries > 0 && msg.ReadCount > w.config.MaxDeliveries {
		log.ErrorContext(ctx, "delivery limit exceeded, dead-lettering request",
			slog.Int("max_deliveries", w.config.MaxDeliveries),
			slog.String("payload", string(msg.Payload)))
		return w.archive(ctx, msg)
	}

	var req queue.GenerateImageMessage
	if err := msg.Decode(&req); err != nil || req.InspirationImageID <= 0 {
		// Redelivery cannot fix a malformed payload.
		log.ErrorContext(ctx, "discarding malformed generation request",
			slog.String("payload", string(msg.Payload)))
		return w.archive(ctx, msg)
	}

	log = log.With(slog.Int64("inspiration_id", req.InspirationImageID))
	ctx = logger.WithLogger(ctx, log)

	inspiration, err := w.inspirations.GetEligibleByID(ctx, req.InspirationImageID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.DebugContext(ctx, "no eligible inspiration image, skipping request")
			return nil
		}
		return fmt.Errorf("load inspiration %d: %w", req.InspirationImageID, err)
	}

	images, err := w.generator.GenerateImages(ctx, inspiration.Description)
	if err != nil {
		return fmt.Errorf("generate for inspiration %d: %w", inspiration.ID, err)
	}
	if len(images) == 0 {
		return fmt.Errorf("generate for inspiration %d: %w", inspiration.ID, generation.ErrNoImageGenerated)
	}
	image := images[0]

	data, err := image.Decode()
	if err != nil {
		return fmt.Errorf("decode image for inspiration %d: %w", inspiration.ID, err)
	}

	url, err := w.uploader.Upload(ctx, data, inspiration.ID)
	if err != nil {
		return fmt.Errorf("upload image for inspiration %d: %w", inspiration.ID, err)
	}

	record, err := domain.NewGeneratedImage(inspiration.ID, url, inspiration.Description, image.RevisedPrompt)
	if err != nil {
		return fmt.Errorf("build generated image: %w", err)
	}
	if err := w.generated.Create(ctx, record); err != nil {
		return fmt.Errorf("store generated image: %w", err)
	}

	log.InfoContext(ctx, "generated image saved",
		slog.Int64("generated_image_id", record.ID),
		slog.String("url", url))

	return w.archive(ctx, msg)
}

func (w *GenerationWorker) archive(ctx context.Context, msg *queue.Message) error {
	// Archive runs even when handling used up the lease.
	archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.config.Lease)
	defer cancel()

	if err := w.queue.Archive(archiveCtx, w.config.QueueName, msg.ID); err != nil {
		return fmt.Errorf("%w: message %d: %w", errArchive, msg.ID, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
