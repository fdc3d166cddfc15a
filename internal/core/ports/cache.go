package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheBusy is returned when a cache fill could not complete within its
// bounded retry budget because another caller held the fill lock the whole
// time. Callers should treat it as "temporarily unavailable", not a fault.
var ErrCacheBusy = errors.New("cache fill contended, try again")

// Cache defines the key-value cache contract. Beyond plain get/set/delete it
// exposes the two primitives a lease-bounded lock needs: an atomic
// set-if-absent claim and a compare-and-delete release that only succeeds
// for the holder's own token.
//
// Implementations should degrade gracefully (returning an error without
// crashing callers) so that application logic can fall back to the primary
// datastore.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (0 or negative means no expiration if supported).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
	// SetIfAbsent atomically stores value only when key has no entry.
	// Returns true when the claim succeeded.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// DeleteIfValue removes key only when its current value equals value.
	// Returns true when a deletion happened.
	DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error)
}
