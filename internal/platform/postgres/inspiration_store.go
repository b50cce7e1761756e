package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/store"
)

// PostgresInspirationStore implements the store.InspirationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInspirationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInspirationStore creates a new PostgreSQL implementation of the
// InspirationStore interface. If logger is nil, a default logger will be used.
func NewPostgresInspirationStore(db store.DBTX, logger *slog.Logger) *PostgresInspirationStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInspirationStore{
		db:     db,
		logger: logger.With(slog.String("component", "inspiration_store")),
	}
}

// Ensure PostgresInspirationStore implements store.InspirationStore interface
var _ store.InspirationStore = (*PostgresInspirationStore)(nil)

// Create implements store.InspirationStore.Create.
// The image is validated before any write, so an image without a
// description is never inserted.
func (s *PostgresInspirationStore) Create(ctx context.Context, img *domain.InspirationImage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := img.Validate(); err != nil {
		log.Warn("inspiration image validation failed during create",
			slog.String("error", err.Error()),
			slog.String("source_id", img.SourceID))
		return err
	}

	query := `
		INSERT INTO inspiration_image (source_id, source_url, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, img.SourceID, img.SourceURL, img.Description).Scan(&img.ID)
	if err != nil {
		log.Error("failed to create inspiration image",
			slog.String("error", err.Error()),
			slog.String("source_id", img.SourceID))
		return MapError(err)
	}

	log.Debug("inspiration image created",
		slog.Int64("inspiration_image_id", img.ID),
		slog.String("source_id", img.SourceID))
	return nil
}

// GetEligibleByID implements store.InspirationStore.GetEligibleByID.
// Rows with a null or empty description are treated as absent.
func (s *PostgresInspirationStore) GetEligibleByID(ctx context.Context, id int64) (*domain.InspirationImage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, source_id, source_url, description
		FROM inspiration_image
		WHERE id = $1 AND description IS NOT NULL AND description <> ''
	`

	var img domain.InspirationImage
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&img.ID,
		&img.SourceID,
		&img.SourceURL,
		&img.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("eligible inspiration image not found", slog.Int64("inspiration_image_id", id))
			return nil, store.ErrInspirationNotFound
		}
		log.Error("failed to get inspiration image",
			slog.String("error", err.Error()),
			slog.Int64("inspiration_image_id", id))
		return nil, MapError(err)
	}

	return &img, nil
}
