package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/imagine/internal/generation"
	"google.golang.org/genai"
)

// DefaultModel is the Imagen model used when none is configured.
const DefaultModel = "imagen-3.0-generate-002"

// ImagesAPI is the subset of the genai Models service used by the generator.
type ImagesAPI interface {
	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

// Config contains the settings for the Imagen generator. Timeout bounds a
// single GenerateImages call; zero leaves the caller's deadline in charge.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator implements generation.Generator using the genai images API.
type Generator struct {
	api     ImagesAPI
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTimeout bounds each GenerateImages call.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) {
		g.timeout = d
	}
}

var _ generation.Generator = (*Generator)(nil)

// NewGenerator creates a Generator talking to the Gemini API.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg Config) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return NewGeneratorWithAPI(client.Models, cfg.Model, logger, WithTimeout(cfg.Timeout))
}

// NewGeneratorWithAPI creates a Generator over an existing images API.
func NewGeneratorWithAPI(api ImagesAPI, model string, logger *slog.Logger, opts ...Option) (*Generator, error) {
	if api == nil {
		return nil, fmt.Errorf("%w: images API cannot be nil", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Generator{
		api:    api,
		model:  model,
		logger: logger.With(slog.String("component", "gemini_generator")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// GenerateImages implements generation.Generator.
func (g *Generator) GenerateImages(ctx context.Context, prompt string) ([]generation.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", generation.ErrGenerationFailed)
	}

	g.logger.DebugContext(ctx, "requesting image",
		"model", g.model,
		"prompt_length", len(prompt))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.api.GenerateImages(ctx, g.model, prompt, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	if resp == nil {
		return nil, generation.ErrNoImageGenerated
	}

	images := make([]generation.Image, 0, len(resp.GeneratedImages))
	var filtered string
	for _, gi := range resp.GeneratedImages {
		if gi == nil {
			continue
		}
		if gi.Image == nil || len(gi.Image.ImageBytes) == 0 {
			if gi.RAIFilteredReason != "" {
				filtered = gi.RAIFilteredReason
			}
			continue
		}

		revised := gi.EnhancedPrompt
		if revised == "" {
			revised = prompt
		}
		images = append(images, generation.Image{
			B64JSON:       base64.StdEncoding.EncodeToString(gi.Image.ImageBytes),
			RevisedPrompt: revised,
		})
	}

	if len(images) == 0 {
		if filtered != "" {
			return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, filtered)
		}
		return nil, generation.ErrNoImageGenerated
	}

	return images, nil
}
