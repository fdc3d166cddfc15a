package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired signals that a named lock could not be claimed within
// the caller's wait budget. It is a recoverable contention outcome, not a
// system error: surface it to the end user as "please retry".
var ErrLockNotAcquired = errors.New("lock not acquired")

// Lease is a held lock. Release is safe to call exactly once per
// acquisition; releasing after the lease already expired and the name was
// re-acquired by someone else is a no-op and never disturbs the new holder.
type Lease interface {
	Release(ctx context.Context)
}

// Locker hands out named, lease-bounded mutual-exclusion locks. At most one
// holder exists per name at any instant; a lock auto-expires after its
// lease even if never released, so a crashed holder cannot deadlock the
// system.
type Locker interface {
	// TryAcquire claims name for up to leaseTime, retrying with backoff
	// until waitTime elapses. On contention it returns an error satisfying
	// errors.Is(err, ErrLockNotAcquired); a cancelled ctx is reported the
	// same way with the cause wrapped alongside.
	TryAcquire(ctx context.Context, name string, waitTime, leaseTime time.Duration) (Lease, error)
}
