package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/phrazzld/imagine/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// mockImagesAPI is a function-field mock of ImagesAPI.
type mockImagesAPI struct {
	GenerateImagesFn func(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
	gotModel         string
	gotPrompt        string
}

func (m *mockImagesAPI) GenerateImages(
	ctx context.Context,
	model string,
	prompt string,
	config *genai.GenerateImagesConfig,
) (*genai.GenerateImagesResponse, error) {
	m.gotModel = model
	m.gotPrompt = prompt
	return m.GenerateImagesFn(ctx, model, prompt, config)
}

func newTestGenerator(t *testing.T, api ImagesAPI) *Generator {
	t.Helper()

	g, err := NewGeneratorWithAPI(api, "imagen-3.0-generate-002", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return g
}

func TestGenerator_GenerateImages(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G'}

	t.Run("encodes bytes and reports enhanced prompt", func(t *testing.T) {
		api := &mockImagesAPI{
			GenerateImagesFn: func(ctx context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return &genai.GenerateImagesResponse{
					GeneratedImages: []*genai.GeneratedImage{
						{Image: &genai.Image{ImageBytes: png, MIMEType: "image/png"}, EnhancedPrompt: "a fluffy cat"},
					},
				}, nil
			},
		}

		images, err := newTestGenerator(t, api).GenerateImages(context.Background(), "a cat")

		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(png), images[0].B64JSON)
		assert.Equal(t, "a fluffy cat", images[0].RevisedPrompt)
		assert.Equal(t, "imagen-3.0-generate-002", api.gotModel)
		assert.Equal(t, "a cat", api.gotPrompt)

		decoded, err := images[0].Decode()
		require.NoError(t, err)
		assert.Equal(t, png, decoded)
	})

	t.Run("falls back to submitted prompt", func(t *testing.T) {
		api := &mockImagesAPI{
			GenerateImagesFn: func(ctx context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return &genai.GenerateImagesResponse{
					GeneratedImages: []*genai.GeneratedImage{{Image: &genai.Image{ImageBytes: png}}},
				}, nil
			},
		}

		images, err := newTestGenerator(t, api).GenerateImages(context.Background(), "a cat")

		require.NoError(t, err)
		assert.Equal(t, "a cat", images[0].RevisedPrompt)
	})

	t.Run("no images", func(t *testing.T) {
		api := &mockImagesAPI{
			GenerateImagesFn: func(ctx context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return &genai.GenerateImagesResponse{}, nil
			},
		}

		_, err := newTestGenerator(t, api).GenerateImages(context.Background(), "a cat")

		assert.ErrorIs(t, err, generation.ErrNoImageGenerated)
	})

	t.Run("filtered by safety", func(t *testing.T) {
		api := &mockImagesAPI{
			GenerateImagesFn: func(ctx context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return &genai.GenerateImagesResponse{
					GeneratedImages: []*genai.GeneratedImage{{RAIFilteredReason: "blocked"}},
				}, nil
			},
		}

		_, err := newTestGenerator(t, api).GenerateImages(context.Background(), "a cat")

		assert.ErrorIs(t, err, generation.ErrContentBlocked)
	})

	t.Run("api error", func(t *testing.T) {
		api := &mockImagesAPI{
			GenerateImagesFn: func(ctx context.Context, model, prompt string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
				return nil, errors.New("quota exceeded")
			},
		}

		_, err := newTestGenerator(t, api).GenerateImages(context.Background(), "a cat")

		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
	})
}

func TestNewGeneratorWithAPI_Validation(t *testing.T) {
	_, err := NewGeneratorWithAPI(nil, "imagen", nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = NewGeneratorWithAPI(&mockImagesAPI{}, "", nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), nil, Config{Model: "imagen"})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestGenerator_GenerateImagesTimeout(t *testing.T) {
	api := &mockImagesAPI{
		GenerateImagesFn: func(ctx context.Context, _, _ string, _ *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "each call must carry a deadline")
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	g, err := NewGeneratorWithAPI(api, DefaultModel, nil, WithTimeout(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	_, err = g.GenerateImages(context.Background(), "a cat")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
