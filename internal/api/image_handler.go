package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/imagine/internal/api/shared"
	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/redact"
	"github.com/phrazzld/imagine/internal/store"
)

// ImageHandler handles the generated image browsing endpoints.
type ImageHandler struct {
	images store.GeneratedImageReader
	logger *slog.Logger
}

// NewImageHandler creates a new ImageHandler.
// If logger is nil, a default logger will be used.
func NewImageHandler(images store.GeneratedImageReader, logger *slog.Logger) *ImageHandler {
	if images == nil {
		panic("images cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ImageHandler{
		images: images,
		logger: logger.With(slog.String("component", "image_handler")),
	}
}

// Routes registers the image endpoints on r.
func (h *ImageHandler) Routes(r chi.Router) {
	r.Get("/images/first", h.GetFirstImage)
	r.Get("/images/{id}", h.GetImage)
	r.Get("/images/{id}/next", h.GetNextImage)
	r.Get("/images/{id}/previous", h.GetPreviousImage)
}

// GetImage handles GET /images/{id}.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	h.serveByID(w, r, "get", h.images.GetByID)
}

// GetNextImage handles GET /images/{id}/next.
func (h *ImageHandler) GetNextImage(w http.ResponseWriter, r *http.Request) {
	h.serveByID(w, r, "next", h.images.Next)
}

// GetPreviousImage handles GET /images/{id}/previous.
func (h *ImageHandler) GetPreviousImage(w http.ResponseWriter, r *http.Request) {
	h.serveByID(w, r, "previous", h.images.Previous)
}

// GetFirstImage handles GET /images/first.
func (h *ImageHandler) GetFirstImage(w http.ResponseWriter, r *http.Request) {
	pair, err := h.images.First(r.Context())
	h.respond(w, r, "first", pair, err)
}

func (h *ImageHandler) serveByID(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	lookup func(ctx context.Context, id int64) (*domain.ImagePair, error),
) {
	id, err := getPathID(r, "id")
	if err != nil {
		h.respond(w, r, operation, nil, err)
		return
	}

	pair, err := lookup(r.Context(), id)
	h.respond(w, r, operation, pair, err)
}

func (h *ImageHandler) respond(
	w http.ResponseWriter,
	r *http.Request,
	operation string,
	pair *domain.ImagePair,
	err error,
) {
	if err == nil {
		shared.RespondWithJSON(w, r, http.StatusOK, pair)
		return
	}

	status := MapErrorToStatusCode(err)
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	if status >= http.StatusInternalServerError {
		log.Error("image lookup failed",
			slog.String("operation", operation),
			slog.String("error", redact.Error(err)))
	} else {
		log.Debug("image lookup rejected",
			slog.String("operation", operation),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	}
	shared.RespondWithStatus(w, r, status)
}
