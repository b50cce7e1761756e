package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Image is one generated image as returned by a provider.
type Image struct {
	// B64JSON is the image content encoded as standard base64.
	B64JSON string

	// RevisedPrompt is the prompt the provider actually used. It may differ
	// from the submitted prompt.
	RevisedPrompt string
}

// Decode returns the raw image bytes.
// Returns ErrDecode if the payload is empty or not valid base64.
func (i Image) Decode() ([]byte, error) {
	payload := strings.TrimSpace(i.B64JSON)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrDecode)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return data, nil
}

// Generator defines the interface for generating images from a text prompt.
// This interface serves as a boundary between the pipeline and external
// image generation services.
type Generator interface {
	// GenerateImages requests images for prompt. Implementations request a
	// single image. A response with no images is reported as
	// ErrNoImageGenerated.
	GenerateImages(ctx context.Context, prompt string) ([]Image, error)
}
