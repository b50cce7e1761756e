package mocks

import (
	"context"

	"github.com/phrazzld/imagine/internal/catalog"
	"github.com/phrazzld/imagine/internal/generation"
)

// Fetcher is a mock catalog fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context) ([]catalog.Candidate, error)
}

// Fetch implements task.Fetcher
func (m *Fetcher) Fetch(ctx context.Context) ([]catalog.Candidate, error) {
	if m.FetchFn != nil {
		return m.FetchFn(ctx)
	}
	return nil, nil
}

// Generator is a mock implementation of generation.Generator.
type Generator struct {
	GenerateImagesFn func(ctx context.Context, prompt string) ([]generation.Image, error)
}

// GenerateImages implements generation.Generator
func (m *Generator) GenerateImages(ctx context.Context, prompt string) ([]generation.Image, error) {
	if m.GenerateImagesFn != nil {
		return m.GenerateImagesFn(ctx, prompt)
	}
	return nil, generation.ErrNoImageGenerated
}

// Uploader is a mock task.Uploader.
type Uploader struct {
	UploadFn func(ctx context.Context, data []byte, inspirationID int64) (string, error)
}

// Upload implements task.Uploader
func (m *Uploader) Upload(ctx context.Context, data []byte, inspirationID int64) (string, error) {
	if m.UploadFn != nil {
		return m.UploadFn(ctx, data, inspirationID)
	}
	return "", nil
}
