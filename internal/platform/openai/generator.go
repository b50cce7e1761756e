package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/imagine/internal/generation"
)

const (
	// DefaultURL is the public image generation endpoint.
	DefaultURL = "https://api.openai.com/v1/images/generations"

	defaultModel       = "dall-e-3"
	defaultSize        = "1024x1024"
	defaultHTTPTimeout = 2 * time.Minute
	maxResponseBytes   = 32 << 20
	responseFormatB64  = "b64_json"
)

// Config captures the settings for the image generation endpoint.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Size    string
	Timeout time.Duration
}

// Generator calls the image generation endpoint over HTTP.
type Generator struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Generator = (*Generator)(nil)

// Option customizes the generator.
type Option func(*Generator)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) {
		if client != nil {
			g.httpClient = client
		}
	}
}

// NewGenerator validates cfg and constructs a Generator.
// If logger is nil, a default logger will be used.
func NewGenerator(cfg Config, logger *slog.Logger, opts ...Option) (*Generator, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Size == "" {
		cfg.Size = defaultSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	g := &Generator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With(slog.String("component", "openai_generator")),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GenerateImages implements generation.Generator.
func (g *Generator) GenerateImages(ctx context.Context, prompt string) ([]generation.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("%w: prompt cannot be empty", generation.ErrGenerationFailed)
	}

	payload, err := json.Marshal(imageRequest{
		Model:          g.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           g.cfg.Size,
		ResponseFormat: responseFormatB64,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", generation.ErrGenerationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", generation.ErrGenerationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", generation.ErrGenerationFailed, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, statusError(resp.StatusCode, body)
	}

	var decoded imageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", generation.ErrGenerationFailed, err)
	}

	images := make([]generation.Image, 0, len(decoded.Data))
	for _, d := range decoded.Data {
		if d.B64JSON == "" {
			continue
		}
		images = append(images, generation.Image{B64JSON: d.B64JSON, RevisedPrompt: d.RevisedPrompt})
	}

	g.logger.DebugContext(ctx, "image generation completed",
		slog.String("model", g.cfg.Model),
		slog.Int("images", len(images)),
		slog.Duration("duration", time.Since(start)))

	if len(images) == 0 {
		return nil, generation.ErrNoImageGenerated
	}
	return images, nil
}

func statusError(status int, body []byte) error {
	var apiErr errorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		if apiErr.Error.Code == "content_policy_violation" {
			return fmt.Errorf("%w: %s", generation.ErrContentBlocked, apiErr.Error.Message)
		}
		return fmt.Errorf("%w: http %d: %s", generation.ErrGenerationFailed, status, apiErr.Error.Message)
	}
	return fmt.Errorf("%w: http %d", generation.ErrGenerationFailed, status)
}
