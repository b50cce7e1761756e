// Package generation defines the boundary between the pipeline and external
// image generation services. Providers live in internal/platform and return
// images as base64 text together with the prompt the model actually used.
package generation
