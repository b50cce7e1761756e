package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/imagine/internal/domain"
	"github.com/phrazzld/imagine/internal/platform/logger"
	"github.com/phrazzld/imagine/internal/store"
)

// PostgresGeneratedStore implements store.GeneratedStore and
// store.GeneratedImageReader using PostgreSQL.
type PostgresGeneratedStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresGeneratedStore creates a new PostgresGeneratedStore.
// If logger is nil, a default logger will be used.
func NewPostgresGeneratedStore(db store.DBTX, logger *slog.Logger) *PostgresGeneratedStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresGeneratedStore{
		db:     db,
		logger: logger.With(slog.String("component", "generated_store")),
	}
}

var (
	_ store.GeneratedStore       = (*PostgresGeneratedStore)(nil)
	_ store.GeneratedImageReader = (*PostgresGeneratedStore)(nil)
)

// Create implements store.GeneratedStore.Create.
// Returns store.ErrInvalidEntity if the inspiration image does not exist.
func (s *PostgresGeneratedStore) Create(ctx context.Context, img *domain.GeneratedImage) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := img.Validate(); err != nil {
		log.Warn("generated image validation failed during create",
			slog.String("error", err.Error()),
			slog.Int64("inspiration_image_id", img.InspirationImageID))
		return err
	}

	query := `
		INSERT INTO generated_image (source_url, inspiration_image_id, prompt, revised_prompt, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(
		ctx,
		query,
		img.SourceURL,
		img.InspirationImageID,
		img.Prompt,
		img.RevisedPrompt,
		img.CreatedAt,
	).Scan(&img.ID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during generated image creation",
				slog.String("error", err.Error()),
				slog.Int64("inspiration_image_id", img.InspirationImageID))
			return fmt.Errorf("%w: inspiration image %d not found",
				store.ErrInvalidEntity, img.InspirationImageID)
		}
		log.Error("failed to create generated image",
			slog.String("error", err.Error()),
			slog.Int64("inspiration_image_id", img.InspirationImageID))
		return MapError(err)
	}

	log.Info("generated image created",
		slog.Int64("generated_image_id", img.ID),
		slog.Int64("inspiration_image_id", img.InspirationImageID))
	return nil
}

const pairColumns = `
	SELECT g.id, g.inspiration_image_id, g.source_url, g.prompt, g.revised_prompt, g.created_at,
	       i.id, i.source_id, i.source_url, COALESCE(i.description, '')
	FROM generated_image g
	JOIN inspiration_image i ON i.id = g.inspiration_image_id
`

// First implements store.GeneratedImageReader.First.
func (s *PostgresGeneratedStore) First(ctx context.Context) (*domain.ImagePair, error) {
	return s.queryPair(ctx, "first", pairColumns+`ORDER BY g.id ASC LIMIT 1`)
}

// GetByID implements store.GeneratedImageReader.GetByID.
func (s *PostgresGeneratedStore) GetByID(ctx context.Context, id int64) (*domain.ImagePair, error) {
	return s.queryPair(ctx, "get", pairColumns+`WHERE g.id = $1`, id)
}

// Next implements store.GeneratedImageReader.Next.
func (s *PostgresGeneratedStore) Next(ctx context.Context, id int64) (*domain.ImagePair, error) {
	return s.queryPair(ctx, "next", pairColumns+`WHERE g.id > $1 ORDER BY g.id ASC LIMIT 1`, id)
}

// Previous implements store.GeneratedImageReader.Previous.
func (s *PostgresGeneratedStore) Previous(ctx context.Context, id int64) (*domain.ImagePair, error) {
	return s.queryPair(ctx, "previous", pairColumns+`WHERE g.id < $1 ORDER BY g.id DESC LIMIT 1`, id)
}

func (s *PostgresGeneratedStore) queryPair(
	ctx context.Context,
	operation string,
	query string,
	args ...any,
) (*domain.ImagePair, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var pair domain.ImagePair
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&pair.Generated.ID,
		&pair.Generated.InspirationImageID,
		&pair.Generated.SourceURL,
		&pair.Generated.Prompt,
		&pair.Generated.RevisedPrompt,
		&pair.Generated.CreatedAt,
		&pair.Inspiration.ID,
		&pair.Inspiration.SourceID,
		&pair.Inspiration.SourceURL,
		&pair.Inspiration.Description,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("generated image not found",
				slog.String("operation", operation),
				slog.Any("args", args))
			return nil, store.ErrGeneratedNotFound
		}
		log.Error("failed to read generated image",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("generated_image", operation, "query failed", MapError(err))
	}

	return &pair, nil
}
