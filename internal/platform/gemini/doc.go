// Package gemini provides an implementation of the generation.Generator
// interface backed by Google's Imagen models through the genai client.
//
// The genai client returns raw image bytes; the adapter encodes them as
// base64 so every provider hands the pipeline the same Image shape. When the
// model rewrites the prompt, the enhanced prompt is reported as the revised
// prompt; otherwise the submitted prompt is.
package gemini
