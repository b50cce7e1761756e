package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored, or when the database rejects it for a constraint
	// violation. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrPersistence is returned when a read or write fails for reasons
	// other than the entity itself, such as a lost connection.
	ErrPersistence = errors.New("persistence failure")

	// ErrInspirationNotFound indicates that the requested inspiration image
	// does not exist or has no description.
	ErrInspirationNotFound = fmt.Errorf("%w: inspiration image", ErrNotFound)

	// ErrGeneratedNotFound indicates that no generated image matched the lookup.
	ErrGeneratedNotFound = fmt.Errorf("%w: generated image", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "inspiration_image")
	Operation string // The operation that failed (e.g., "create", "next")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
