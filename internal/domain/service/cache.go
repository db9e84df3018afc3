package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// KeyValueCache is a namespaced TTL key-value store. Implementations prefix
// every key with their namespace so callers can share one backing store
// without key collisions.
type KeyValueCache interface {
	// Set stores a value under key with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value, returning ErrCacheMiss when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
