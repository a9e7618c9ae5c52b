// Package cache provides a keyed byte store for process-shared state that
// callers may also want to externalize (price quotes, most notably).
//
// Entries carry no expiry: the cache never removes data, it only hands back
// what it has. Whether an entry is still trustworthy is a policy decision of
// the reader, which is what lets a reader deliberately accept a stale value
// when the upstream is down.
package cache

import "context"

// Store is implemented by the in-memory map and the Redis client.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key string, value []byte) error
}
