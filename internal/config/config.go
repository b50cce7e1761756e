package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Queue      QueueConfig      `mapstructure:"queue" validate:"required"`
	Catalog    CatalogConfig    `mapstructure:"catalog" validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage" validate:"required"`
	Collector  CollectorConfig  `mapstructure:"collector" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

// ServerConfig contains the read API listener and process-wide logging settings.
type ServerConfig struct {
	Port                int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel            string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig contains the relational store connection settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// QueueConfig contains the work queue settings. When URL is empty the queue
// shares the database connection.
type QueueConfig struct {
	URL                string `mapstructure:"url" validate:"omitempty,url"`
	Name               string `mapstructure:"name" validate:"required"`
	LeaseSeconds       int    `mapstructure:"lease_seconds" validate:"required,gt=0"`
	IdleBackoffSeconds int    `mapstructure:"idle_backoff_seconds" validate:"required,gt=0"`
	// MaxDeliveries bounds redelivery of a single message. Zero means unbounded.
	MaxDeliveries int `mapstructure:"max_deliveries" validate:"gte=0"`
}

// CatalogConfig contains the external image catalog settings.
type CatalogConfig struct {
	URL            string `mapstructure:"url" validate:"required,url"`
	AccessKey      string `mapstructure:"access_key"`
	BatchSize      int    `mapstructure:"batch_size" validate:"gte=0,lte=30"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// GenerationConfig contains the image generation provider settings.
// An empty Model selects the provider's default model. TimeoutSeconds must
// be shorter than the queue lease.
type GenerationConfig struct {
	Provider       string `mapstructure:"provider" validate:"required,oneof=openai gemini"`
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	Size           string `mapstructure:"size"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// StorageConfig contains the S3-compatible object store settings.
// Credentials are checked when the uploader is built, not at load time,
// so the read API can start without them.
type StorageConfig struct {
	Endpoint      string `mapstructure:"endpoint" validate:"required"`
	Bucket        string `mapstructure:"bucket" validate:"required"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	PublicBaseURL string `mapstructure:"public_base_url" validate:"omitempty,url"`
	CreateBucket  bool   `mapstructure:"create_bucket"`
}

// CollectorConfig contains the producer schedule settings.
type CollectorConfig struct {
	// Schedule is a cron expression with an optional leading seconds field,
	// or a descriptor such as "@daily".
	Schedule string `mapstructure:"schedule" validate:"required"`
	LockFile string `mapstructure:"lock_file"`
}

// CacheConfig contains the optional read-side cache settings.
// The cache is disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr     string `mapstructure:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	TTLSeconds    int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}

// QueueURL returns the connection string for the work queue, falling back to
// the database URL when no dedicated queue connection is configured.
func (c *Config) QueueURL() string {
	if c.Queue.URL != "" {
		return c.Queue.URL
	}
	return c.Database.URL
}
