// Package queue defines the work queue that decouples image collection from
// image generation.
//
// Messages are read with a lease: a leased message is invisible to every
// other reader until the lease expires or the message is archived. A message
// that is not archived before its lease expires becomes visible again with
// the same ID and payload, so delivery is at-least-once and consumers must
// tolerate duplicates. Archive is idempotent.
//
// MemoryQueue is an in-process implementation used by tests and single
// process deployments; the PostgreSQL implementation lives in
// internal/platform/postgres.
package queue
