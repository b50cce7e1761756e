package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultContentType = "image/png"

// ErrUpload is returned when an object cannot be written to the store.
var ErrUpload = errors.New("upload failed")

// ObjectPutter is the subset of the minio client used for uploads.
type ObjectPutter interface {
	PutObject(
		ctx context.Context,
		bucketName, objectName string,
		reader io.Reader,
		objectSize int64,
		opts minio.PutObjectOptions,
	) (minio.UploadInfo, error)
}

// BucketManager is the subset of the minio client used to prepare a bucket.
type BucketManager interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

// Config captures the object store settings.
type Config struct {
	Endpoint      string
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
}

// NewMinioClient creates a client for the configured endpoint.
func NewMinioClient(cfg Config) (*minio.Client, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("storage: access key and secret key are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: client init: %w", err)
	}
	return client, nil
}

// EnsureBucket creates the bucket if it does not exist.
func EnsureBucket(ctx context.Context, client BucketManager, bucket, region string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("storage: checking bucket %s: %w", bucket, err)
	}
	if exists {
		logger.DebugContext(ctx, "bucket exists", slog.String("bucket", bucket))
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("storage: creating bucket %s: %w", bucket, err)
	}
	logger.InfoContext(ctx, "bucket created", slog.String("bucket", bucket))
	return nil
}

// Uploader writes generated images to a single bucket.
type Uploader struct {
	client  ObjectPutter
	bucket  string
	baseURL string
	newID   func() string
	logger  *slog.Logger
}

// UploaderOption customizes an Uploader.
type UploaderOption func(*Uploader)

// WithIDFunc overrides the random key suffix generator.
func WithIDFunc(fn func() string) UploaderOption {
	return func(u *Uploader) {
		if fn != nil {
			u.newID = fn
		}
	}
}

// NewUploader creates an Uploader. Object URLs use PublicBaseURL when set
// and the virtual-hosted S3 form of the bucket otherwise.
// If logger is nil, a default logger will be used.
func NewUploader(client ObjectPutter, cfg Config, logger *slog.Logger, opts ...UploaderOption) *Uploader {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", cfg.Bucket)
	}

	u := &Uploader{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: baseURL,
		newID:   uuid.NewString,
		logger:  logger.With(slog.String("component", "uploader")),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload stores data under a key derived from the inspiration image id and a
// fresh random id, then returns the object's public URL.
func (u *Uploader) Upload(ctx context.Context, data []byte, inspirationID int64) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty image", ErrUpload)
	}

	contentType, ext := detectImageType(data)
	key := fmt.Sprintf("%d-%s%s", inspirationID, u.newID(), ext)

	info, err := u.client.PutObject(
		ctx,
		u.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s/%s: %v", ErrUpload, u.bucket, key, err)
	}

	u.logger.InfoContext(ctx, "image uploaded",
		slog.String("bucket", u.bucket),
		slog.String("key", key),
		slog.String("content_type", contentType),
		slog.Int64("size", info.Size))

	return u.baseURL + "/" + key, nil
}

// detectImageType sniffs the image format, defaulting to PNG when the bytes
// are not a recognizable image.
func detectImageType(data []byte) (contentType, ext string) {
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return defaultContentType, ".png"
	}
	return mtype.String(), mtype.Extension()
}
