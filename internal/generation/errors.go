package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when the provider call fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate image")

	// ErrNoImageGenerated is returned when the provider answers without any image
	ErrNoImageGenerated = errors.New("no image generated")

	// ErrDecode is returned when a returned image payload cannot be decoded
	ErrDecode = errors.New("failed to decode generated image")

	// ErrContentBlocked is returned when the provider refuses the prompt due to safety filters
	ErrContentBlocked = errors.New("prompt blocked by provider safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
