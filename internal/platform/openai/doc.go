// Package openai implements generation.Generator against an OpenAI-compatible
// image generation endpoint. One image is requested per call and the response
// is asked for as base64 JSON so no second download is needed.
package openai
