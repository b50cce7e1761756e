// Package store defines interfaces for persisting inspiration and generated
// images. These interfaces keep the collector, the generation worker and the
// read API independent of the underlying database.
package store
