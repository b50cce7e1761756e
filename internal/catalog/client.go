package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxResponseBytes   = 4 << 20
)

// ErrFetch is returned when the catalog is unreachable, answers with a
// non-success status, or returns a body that is not a candidate list.
var ErrFetch = errors.New("catalog fetch failed")

// Config captures the settings required to talk to the catalog.
type Config struct {
	URL       string
	AccessKey string
	BatchSize int
	Timeout   time.Duration
}

// URLs holds the renditions of a catalog image.
type URLs struct {
	Regular string `json:"regular" validate:"required,url"`
}

// Candidate is one catalog item. Either description may be absent.
type Candidate struct {
	ID             string  `json:"id" validate:"required"`
	URLs           URLs    `json:"urls"`
	Description    *string `json:"description"`
	AltDescription *string `json:"alt_description"`
}

// Client fetches candidate batches from the catalog.
type Client struct {
	cfg        Config
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a catalog client. If logger is nil, a default logger
// will be used.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.AccessKey = strings.TrimSpace(cfg.AccessKey)
	if cfg.URL == "" {
		return nil, errors.New("catalog: url required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("catalog: invalid url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		logger:     logger.With(slog.String("component", "catalog_client")),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Fetch retrieves one batch of candidates. Items that fail validation are
// dropped with a warning; any transport, status or decode failure is
// returned as ErrFetch and no candidates are returned.
func (c *Client) Fetch(ctx context.Context) ([]Candidate, error) {
	req, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: http %d: %s", ErrFetch, resp.StatusCode, snippet(body))
	}

	var raw []Candidate
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrFetch, err)
	}

	candidates := make([]Candidate, 0, len(raw))
	for _, cand := range raw {
		if err := c.validate.Struct(cand); err != nil {
			c.logger.WarnContext(ctx, "dropping invalid catalog item",
				slog.String("source_id", cand.ID),
				slog.String("error", err.Error()))
			continue
		}
		candidates = append(candidates, cand)
	}

	c.logger.DebugContext(ctx, "catalog batch fetched",
		slog.Int("received", len(raw)),
		slog.Int("valid", len(candidates)),
		slog.Duration("duration", time.Since(start)))

	return candidates, nil
}

func (c *Client) newRequest(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrFetch, err)
	}
	if c.cfg.BatchSize > 0 {
		q := u.Query()
		q.Set("per_page", strconv.Itoa(c.cfg.BatchSize))
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Version", "v1")
	if c.cfg.AccessKey != "" {
		req.Header.Set("Authorization", "Client-ID "+c.cfg.AccessKey)
	}
	return req, nil
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
