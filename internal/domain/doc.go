// Package domain contains the core entities of the image pipeline: the
// inspiration images collected from the external catalog and the images
// generated from them. It is independent of any storage, queue or transport.
package domain
