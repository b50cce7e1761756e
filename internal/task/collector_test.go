package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/imagine/internal/catalog"
	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/queue"
	"github.com/phrazzld/imagine/internal/task/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidate(id string, description, alt *string) catalog.Candidate {
	return catalog.Candidate{
		ID:             id,
		URLs:           catalog.URLs{Regular: "https://images.example.com/" + id},
		Description:    description,
		AltDescription: alt,
	}
}

// recordingInspirations assigns sequential IDs and remembers what it stored.
func recordingInspirations(stored *[]*domain.InspirationImage) *mocks.InspirationStore {
	var nextID int64
	return &mocks.InspirationStore{
		CreateFn: func(ctx context.Context, img *domain.InspirationImage) error {
			nextID++
			img.ID = nextID
			*stored = append(*stored, img)
			return nil
		},
	}
}

func TestCollector_Collect(t *testing.T) {
	t.Parallel()

	fetcher := &mocks.Fetcher{
		FetchFn: func(ctx context.Context) ([]catalog.Candidate, error) {
			return []catalog.Candidate{
				candidate("a", strPtr("a red barn"), strPtr("barn")),
				candidate("b", nil, strPtr("a quiet lake")),
				candidate("c", nil, nil),
				candidate("d", strPtr("   "), strPtr("")),
			}, nil
		},
	}
	var stored []*domain.InspirationImage
	q := queue.NewMemoryQueue(discardLogger())

	collector, err := NewCollector(fetcher, recordingInspirations(&stored), q, queue.GenerateImageQueue, discardLogger())
	require.NoError(t, err)

	result, err := collector.Collect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, CollectResult{Fetched: 4, Skipped: 2, Stored: 2, Enqueued: 2}, result)

	require.Len(t, stored, 2)
	assert.Equal(t, "a red barn", stored[0].Description)
	assert.Equal(t, "a quiet lake", stored[1].Description)

	for _, img := range stored {
		msg, err := q.Lease(context.Background(), queue.GenerateImageQueue, time.Minute)
		require.NoError(t, err)
		var payload queue.GenerateImageMessage
		require.NoError(t, msg.Decode(&payload))
		assert.Equal(t, img.ID, payload.InspirationImageID)
	}
	_, err = q.Lease(context.Background(), queue.GenerateImageQueue, time.Minute)
	assert.ErrorIs(t, err, queue.ErrNoMessage)
}

func TestCollector_FetchErrorWritesNothing(t *testing.T) {
	t.Parallel()

	fetcher := &mocks.Fetcher{
		FetchFn: func(ctx context.Context) ([]catalog.Candidate, error) {
			return nil, catalog.ErrFetch
		},
	}
	inspirations := &mocks.InspirationStore{
		CreateFn: func(ctx context.Context, img *domain.InspirationImage) error {
			t.Fatal("nothing may be stored when the fetch fails")
			return nil
		},
	}
	q := queue.NewMemoryQueue(discardLogger())

	collector, err := NewCollector(fetcher, inspirations, q, "", discardLogger())
	require.NoError(t, err)

	_, err = collector.Collect(context.Background())

	assert.ErrorIs(t, err, catalog.ErrFetch)
	stats, err := q.Stats(context.Background(), queue.GenerateImageQueue)
	require.NoError(t, err)
	assert.Zero(t, stats.Visible)
}

func TestCollector_CandidateFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	fetcher := &mocks.Fetcher{
		FetchFn: func(ctx context.Context) ([]catalog.Candidate, error) {
			return []catalog.Candidate{
				candidate("fails", strPtr("first"), nil),
				candidate("ok", strPtr("second"), nil),
			}, nil
		},
	}
	var nextID int64
	inspirations := &mocks.InspirationStore{
		CreateFn: func(ctx context.Context, img *domain.InspirationImage) error {
			if img.SourceID == "fails" {
				return errors.New("connection reset")
			}
			nextID++
			img.ID = nextID
			return nil
		},
	}
	q := queue.NewMemoryQueue(discardLogger())

	collector, err := NewCollector(fetcher, inspirations, q, "", discardLogger())
	require.NoError(t, err)

	result, err := collector.Collect(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Enqueued)
}

func TestNewCollector_RequiresDependencies(t *testing.T) {
	t.Parallel()

	q := queue.NewMemoryQueue(nil)

	_, err := NewCollector(nil, &mocks.InspirationStore{}, q, "", nil)
	assert.ErrorIs(t, err, ErrNilFetcher)

	_, err = NewCollector(&mocks.Fetcher{}, nil, q, "", nil)
	assert.ErrorIs(t, err, ErrNilStore)

	_, err = NewCollector(&mocks.Fetcher{}, &mocks.InspirationStore{}, nil, "", nil)
	assert.ErrorIs(t, err, ErrNilQueue)
}
