package domain

import (
	"fmt"
	"strings"
	"time"
)

// Validation errors for GeneratedImage.
var (
	ErrInvalidInspirationID = fmt.Errorf("%w: inspiration image ID must be positive", ErrValidation)
	ErrEmptyImageURL        = fmt.Errorf("%w: generated image URL cannot be empty", ErrValidation)
)

// GeneratedImage is the result of running the generation pipeline on one
// InspirationImage. It is written once and never updated.
type GeneratedImage struct {
	ID                 int64     `json:"id"`
	InspirationImageID int64     `json:"inspiration_image_id"`
	SourceURL          string    `json:"source_url"`
	Prompt             string    `json:"prompt"`
	RevisedPrompt      string    `json:"revised_prompt"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewGeneratedImage creates a GeneratedImage for the given inspiration
// image, uploaded object URL and prompts.
func NewGeneratedImage(inspirationID int64, sourceURL, prompt, revisedPrompt string) (*GeneratedImage, error) {
	img := &GeneratedImage{
		InspirationImageID: inspirationID,
		SourceURL:          sourceURL,
		Prompt:             prompt,
		RevisedPrompt:      revisedPrompt,
		CreatedAt:          time.Now().UTC(),
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return img, nil
}

// Validate checks that the generated image references an inspiration image
// and carries an uploaded URL.
func (g *GeneratedImage) Validate() error {
	if g.InspirationImageID <= 0 {
		return ErrInvalidInspirationID
	}

	if strings.TrimSpace(g.SourceURL) == "" {
		return ErrEmptyImageURL
	}

	return nil
}

// ImagePair is a generated image together with the inspiration image it was
// generated from, as served by the read API.
type ImagePair struct {
	Generated   GeneratedImage   `json:"generated_image"`
	Inspiration InspirationImage `json:"inspiration_image"`
}
