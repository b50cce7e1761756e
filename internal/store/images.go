package store

import (
	"context"

	"github.com/phrazzld/imagine/internal/domain"
)

// InspirationStore defines persistence for inspiration images.
type InspirationStore interface {
	// Create validates and saves a new inspiration image, setting its ID.
	// Returns domain validation errors if the image is invalid; an image
	// without a description is never written.
	Create(ctx context.Context, img *domain.InspirationImage) error

	// GetEligibleByID retrieves an inspiration image that has a description.
	// Returns ErrInspirationNotFound if no such image exists.
	GetEligibleByID(ctx context.Context, id int64) (*domain.InspirationImage, error)
}

// GeneratedStore defines persistence for generated images.
type GeneratedStore interface {
	// Create validates and saves a generated image, setting its ID.
	// Returns ErrInvalidEntity if the referenced inspiration image does not exist.
	Create(ctx context.Context, img *domain.GeneratedImage) error
}

// GeneratedImageReader defines the read-side lookups used by the image API.
// Ordering is by generated image ID only.
type GeneratedImageReader interface {
	// First returns the generated image with the lowest ID.
	First(ctx context.Context) (*domain.ImagePair, error)

	// GetByID returns the generated image with the given ID.
	GetByID(ctx context.Context, id int64) (*domain.ImagePair, error)

	// Next returns the generated image with the smallest ID greater than id.
	Next(ctx context.Context, id int64) (*domain.ImagePair, error)

	// Previous returns the generated image with the largest ID less than id.
	Previous(ctx context.Context, id int64) (*domain.ImagePair, error)
}
