// Package task runs the background halves of the image pipeline: the
// scheduled collector that turns catalog candidates into inspiration images
// and generation requests, and the generation worker that leases those
// requests, generates and uploads an image, records it and archives the
// request. A request that fails at any step is left unarchived so the queue
// delivers it again once its lease expires.
package task
