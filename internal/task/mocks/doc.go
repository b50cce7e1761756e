// Package mocks provides function-field test doubles for the collaborators
// of the collector and the generation worker.
package mocks
