package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment variables read by Load.
const EnvPrefix = "IMAGINE"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile behaves like Load but reads the given config file when path is
// non-empty instead of searching the working directory for config.yaml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper knows about, so every env-only key is bound.
	for _, key := range boundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// Unprefixed names used by existing deployments.
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database url: %w", err)
	}
	if err := v.BindEnv("queue.url", EnvPrefix+"_QUEUE_URL", "MESSAGE_QUEUE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind queue url: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	validate.RegisterStructValidation(validateTimeouts, Config{})
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validateTimeouts requires generation calls to end before the queue lease
// expires.
func validateTimeouts(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)
	if cfg.Queue.LeaseSeconds > 0 && cfg.Generation.TimeoutSeconds >= cfg.Queue.LeaseSeconds {
		sl.ReportError(cfg.Generation.TimeoutSeconds, "Generation.TimeoutSeconds", "TimeoutSeconds", "ltlease", "")
	}
}

var boundKeys = []string{
	"catalog.access_key",
	"generation.api_key",
	"generation.url",
	"generation.model",
	"storage.endpoint",
	"storage.bucket",
	"storage.region",
	"storage.access_key",
	"storage.secret_key",
	"storage.public_base_url",
	"cache.redis_addr",
	"cache.redis_password",
	"collector.lock_file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout_seconds", 10)
	v.SetDefault("server.write_timeout_seconds", 10)

	v.SetDefault("queue.name", "generate_image")
	v.SetDefault("queue.lease_seconds", 60)
	v.SetDefault("queue.idle_backoff_seconds", 100)
	v.SetDefault("queue.max_deliveries", 0)

	v.SetDefault("catalog.url", "https://api.unsplash.com/photos?order_by=popular")
	v.SetDefault("catalog.batch_size", 10)
	v.SetDefault("catalog.timeout_seconds", 30)

	v.SetDefault("generation.provider", "openai")
	v.SetDefault("generation.url", "https://api.openai.com/v1/images/generations")
	v.SetDefault("generation.size", "1024x1024")
	v.SetDefault("generation.timeout_seconds", 50)

	v.SetDefault("storage.endpoint", "s3.amazonaws.com")
	v.SetDefault("storage.bucket", "software-arch-images")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.create_bucket", false)

	v.SetDefault("collector.schedule", "@daily")

	v.SetDefault("cache.ttl_seconds", 3600)
}
