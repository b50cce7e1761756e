package domain

import (
	"fmt"
	"strings"
)

// Validation errors for InspirationImage.
var (
	ErrEmptySourceID      = fmt.Errorf("%w: inspiration source ID cannot be empty", ErrValidation)
	ErrEmptySourceURL     = fmt.Errorf("%w: inspiration source URL cannot be empty", ErrValidation)
	ErrMissingDescription = fmt.Errorf("%w: inspiration image has no description", ErrValidation)
)

// InspirationImage is a stored reference to a catalog image plus the text
// used as the generation prompt. Only images with a description are ever
// constructed, so every stored record is eligible for generation.
type InspirationImage struct {
	ID          int64  `json:"id"`
	SourceID    string `json:"source_id"`
	SourceURL   string `json:"source_url"`
	Description string `json:"description"`
}

// NewInspirationImage builds an InspirationImage from a catalog candidate.
// The description is the primary description when it is non-blank and the
// alternative description otherwise. A candidate with neither is rejected
// with ErrMissingDescription.
func NewInspirationImage(sourceID, sourceURL string, description, altDescription *string) (*InspirationImage, error) {
	img := &InspirationImage{
		SourceID:    sourceID,
		SourceURL:   sourceURL,
		Description: pickDescription(description, altDescription),
	}

	if err := img.Validate(); err != nil {
		return nil, err
	}

	return img, nil
}

// Validate checks that the image carries the fields required for storage.
// The ID is assigned by the store and is not checked.
func (i *InspirationImage) Validate() error {
	if strings.TrimSpace(i.SourceID) == "" {
		return ErrEmptySourceID
	}

	if strings.TrimSpace(i.SourceURL) == "" {
		return ErrEmptySourceURL
	}

	if strings.TrimSpace(i.Description) == "" {
		return ErrMissingDescription
	}

	return nil
}

func pickDescription(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil && strings.TrimSpace(*c) != "" {
			return *c
		}
	}
	return ""
}
