// Package cache memoizes render passes.
//
// The highlight engine is pure: the same definitions over the same tree and
// viewport always assemble the same render data. Callers can therefore skip a
// pass entirely when its inputs are unchanged. This package provides the
// storage side of that: a small [Cache] interface, an in-process LRU
// ([MemoryCache]), an on-disk cache for repeated CLI runs ([FileCache]), a
// no-op ([NullCache]), and a [Keyer] that derives stable keys from input
// hashes.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte payloads under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for storage failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

const (
	// TTLRender bounds how long assembled render data stays cached. Entries
	// are keyed on their full input, so expiry only limits memory growth.
	TTLRender = 10 * time.Minute

	// KeyTypeRender labels render-data keys in observability hooks.
	KeyTypeRender = "render"
)
