// Package api serves the read-only image browsing endpoints. Clients page
// through generated images in ID order; every response pairs a generated
// image with the inspiration image it came from. Errors are reported as a
// bare status code.
package api
