package task

import (
	"context"
	"errors"

	"github.com/phrazzld/imagine/internal/catalog"
)

// Common errors
var (
	ErrNilFetcher   = errors.New("fetcher cannot be nil")
	ErrNilStore     = errors.New("store cannot be nil")
	ErrNilQueue     = errors.New("queue cannot be nil")
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilUploader  = errors.New("uploader cannot be nil")
	ErrNilJob       = errors.New("job cannot be nil")
)

// Fetcher retrieves one batch of catalog candidates.
type Fetcher interface {
	Fetch(ctx context.Context) ([]catalog.Candidate, error)
}

// Uploader stores generated image bytes and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, data []byte, inspirationID int64) (string, error)
}
