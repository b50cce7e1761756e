package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/imagine/internal/generation"
	"github.com/phrazzld/imagine/internal/platform/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, url string) *openai.Generator {
	t.Helper()

	g, err := openai.NewGenerator(openai.Config{
		URL:    url,
		APIKey: "sk-test",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return g
}

func TestGenerator_GenerateImages(t *testing.T) {
	var got map[string]any
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created": 1, "data": [{"b64_json": "iVBORw==", "revised_prompt": "a tabby cat"}]}`)
	}))
	defer server.Close()

	images, err := newTestGenerator(t, server.URL).GenerateImages(context.Background(), "a cat")

	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "iVBORw==", images[0].B64JSON)
	assert.Equal(t, "a tabby cat", images[0].RevisedPrompt)

	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, "dall-e-3", got["model"])
	assert.Equal(t, "a cat", got["prompt"])
	assert.Equal(t, float64(1), got["n"])
	assert.Equal(t, "1024x1024", got["size"])
	assert.Equal(t, "b64_json", got["response_format"])
}

func TestGenerator_GenerateImagesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "empty data",
			status:  http.StatusOK,
			body:    `{"data": []}`,
			wantErr: generation.ErrNoImageGenerated,
		},
		{
			name:    "api error",
			status:  http.StatusBadRequest,
			body:    `{"error": {"message": "bad size", "type": "invalid_request_error"}}`,
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "content policy",
			status:  http.StatusBadRequest,
			body:    `{"error": {"message": "rejected", "code": "content_policy_violation"}}`,
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "server error without body",
			status:  http.StatusBadGateway,
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "malformed body",
			status:  http.StatusOK,
			body:    `not json`,
			wantErr: generation.ErrGenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			images, err := newTestGenerator(t, server.URL).GenerateImages(context.Background(), "a cat")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, images)
		})
	}
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := openai.NewGenerator(openai.Config{URL: "http://localhost"}, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
