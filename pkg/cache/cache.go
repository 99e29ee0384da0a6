// Package cache stores transformed G-code keyed by input content and
// modulation options, so reprocessing an identical file is a read instead
// of a transform. The file backend serves single-machine CLI use; the Redis
// backend lets several print-farm workers share one result cache.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long cached transforms stay valid. Results are fully
// content-addressed, so the TTL exists only to bound disk/memory growth.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is the interface for cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ResultKey builds the cache key for a transformed file: the SHA-256 of the
// input bytes combined with every option that changes the output — the
// modulation parameters and both marker vocabularies.
func ResultKey(inputHash string, amplitude, frequency, segmentLength float64, infillMarkers, solidMarkers []string) string {
	return hashKey("result", inputHash, amplitude, frequency, segmentLength, infillMarkers, solidMarkers)
}
