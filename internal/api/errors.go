package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/store"
)

// ErrInvalidID is returned when an image ID path parameter is not an integer.
var ErrInvalidID = domain.ErrInvalidID

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
