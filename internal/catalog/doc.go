// Package catalog fetches candidate inspiration images from an external
// image catalog over HTTP. Responses are decoded into a single canonical
// Candidate schema and validated before anything downstream sees them.
package catalog
