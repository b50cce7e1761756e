package mocks

import (
	"context"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/store"
)

// InspirationStore is a mock implementation of store.InspirationStore.
type InspirationStore struct {
	CreateFn          func(ctx context.Context, img *domain.InspirationImage) error
	GetEligibleByIDFn func(ctx context.Context, id int64) (*domain.InspirationImage, error)
}

// Create implements store.InspirationStore
func (m *InspirationStore) Create(ctx context.Context, img *domain.InspirationImage) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, img)
	}
	return nil
}

// GetEligibleByID implements store.InspirationStore
func (m *InspirationStore) GetEligibleByID(ctx context.Context, id int64) (*domain.InspirationImage, error) {
	if m.GetEligibleByIDFn != nil {
		return m.GetEligibleByIDFn(ctx, id)
	}
	return nil, store.ErrInspirationNotFound
}

// GeneratedStore is a mock implementation of store.GeneratedStore.
type GeneratedStore struct {
	CreateFn func(ctx context.Context, img *domain.GeneratedImage) error
}

// Create implements store.GeneratedStore
func (m *GeneratedStore) Create(ctx context.Context, img *domain.GeneratedImage) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, img)
	}
	return nil
}
