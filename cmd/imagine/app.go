package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/imagine/internal/catalog"
	"github.com/phrazzld/imagine/internal/config"
	"github.com/phrazzld/imagine/internal/generation"
	"github.com/phrazzld/imagine/internal/platform/cache"
	"github.com/phrazzld/imagine/internal/platform/gemini"
	"github.com/phrazzld/imagine/internal/platform/openai"
	"github.com/phrazzld/imagine/internal/platform/postgres"
	"github.com/phrazzld/imagine/internal/storage"
	"github.com/phrazzld/imagine/internal/store"
	"github.com/phrazzld/imagine/internal/task"
)

// application holds the process-wide dependencies of one command.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	queueDB *sql.DB
	closers []func() error
}

func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := openDatabase(ctx, cfg.Database.URL, logger)
	if err != nil {
		return nil, err
	}

	app := &application{config: cfg, logger: logger, db: db, queueDB: db}
	app.closers = append(app.closers, db.Close)

	if queueURL := cfg.QueueURL(); queueURL != cfg.Database.URL {
		queueDB, err := openDatabase(ctx, queueURL, logger)
		if err != nil {
			app.cleanup()
			return nil, fmt.Errorf("queue database: %w", err)
		}
		app.queueDB = queueDB
		app.closers = append(app.closers, queueDB.Close)
	}

	return app, nil
}

// openDatabase establishes a connection to the database and configures connection pools.
func openDatabase(ctx context.Context, url string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established")
	return db, nil
}

func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn("cleanup failed", "error", err)
		}
	}
	app.closers = nil
}

func (app *application) workQueue() *postgres.PostgresWorkQueue {
	return postgres.NewPostgresWorkQueue(app.queueDB, app.logger)
}

func (app *application) inspirationStore() *postgres.PostgresInspirationStore {
	return postgres.NewPostgresInspirationStore(app.db, app.logger)
}

func (app *application) generatedStore() *postgres.PostgresGeneratedStore {
	return postgres.NewPostgresGeneratedStore(app.db, app.logger)
}

// imageReader returns the read-side store, fronted by Redis when a cache
// address is configured and reachable.
func (app *application) imageReader(ctx context.Context) store.GeneratedImageReader {
	reader := app.generatedStore()

	cacheCfg := app.config.Cache
	if cacheCfg.RedisAddr == "" {
		return reader
	}

	client, err := cache.NewRedisClient(ctx, cache.Options{
		Addr:     cacheCfg.RedisAddr,
		Password: cacheCfg.RedisPassword,
	})
	if err != nil {
		app.logger.Warn("redis unavailable, serving without cache", "error", err)
		return reader
	}
	app.closers = append(app.closers, client.Close)

	ttl := time.Duration(cacheCfg.TTLSeconds) * time.Second
	return cache.NewCachedReader(reader, client, ttl, app.logger)
}

func (app *application) catalogClient() (*catalog.Client, error) {
	c := app.config.Catalog
	return catalog.NewClient(catalog.Config{
		URL:       c.URL,
		AccessKey: c.AccessKey,
		BatchSize: c.BatchSize,
		Timeout:   time.Duration(c.TimeoutSeconds) * time.Second,
	}, app.logger)
}

func newGenerator(ctx context.Context, cfg config.GenerationConfig, logger *slog.Logger) (generation.Generator, error) {
	switch cfg.Provider {
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, logger, gemini.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	case "openai", "":
		gen, err := openai.NewGenerator(openai.Config{
			URL:     cfg.URL,
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			Size:    cfg.Size,
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", generation.ErrInvalidConfig, cfg.Provider)
	}
}

func storageConfig(cfg config.StorageConfig) storage.Config {
	return storage.Config{
		Endpoint:      cfg.Endpoint,
		Bucket:        cfg.Bucket,
		Region:        cfg.Region,
		AccessKey:     cfg.AccessKey,
		SecretKey:     cfg.SecretKey,
		UseSSL:        cfg.UseSSL,
		PublicBaseURL: cfg.PublicBaseURL,
	}
}

func (app *application) uploader(ctx context.Context) (*storage.Uploader, error) {
	cfg := storageConfig(app.config.Storage)

	client, err := storage.NewMinioClient(cfg)
	if err != nil {
		return nil, err
	}

	if app.config.Storage.CreateBucket {
		if err := storage.EnsureBucket(ctx, client, cfg.Bucket, cfg.Region, app.logger); err != nil {
			return nil, err
		}
	}

	return storage.NewUploader(client, cfg, app.logger), nil
}

func workerConfig(cfg config.QueueConfig) task.WorkerConfig {
	return task.WorkerConfig{
		QueueName:     cfg.Name,
		Lease:         time.Duration(cfg.LeaseSeconds) * time.Second,
		IdleBackoff:   time.Duration(cfg.IdleBackoffSeconds) * time.Second,
		MaxDeliveries: cfg.MaxDeliveries,
	}
}
