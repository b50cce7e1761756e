// Package storage uploads generated images to S3-compatible object storage
// and reports the public URL of each stored object.
package storage
