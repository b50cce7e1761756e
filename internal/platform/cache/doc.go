// Package cache provides a Redis read-through cache in front of the
// generated image reader. Generated records are immutable, so cached pairs
// never need invalidation; entries simply expire.
package cache
