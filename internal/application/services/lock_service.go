package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/observability"
)

const (
	lockInitialBackoff = 10 * time.Millisecond
	lockMaxBackoff     = 100 * time.Millisecond
)

// LockService implements ports.Locker on top of the cache store's
// set-if-absent primitive. Each acquisition claims the lock name with a
// fresh owner token; release is a compare-and-delete on that token, so a
// caller whose lease already expired (and whose name was re-claimed by
// someone else) cannot remove the new holder's lock.
type LockService struct {
	cache  ports.Cache
	logger *logrus.Logger
}

func NewLockService(cache ports.Cache, logger *logrus.Logger) ports.Locker {
	return &LockService{cache: cache, logger: logger}
}

type lease struct {
	cache  ports.Cache
	name   string
	token  []byte
	logger *logrus.Logger
}

func (l *lease) Release(ctx context.Context) {
	ok, err := l.cache.DeleteIfValue(ctx, l.name, l.token)
	if err != nil {
		if l.logger != nil {
			l.logger.WithError(err).WithField("lock", l.name).Warn("lock release failed; lease will expire on its own")
		}
		return
	}
	if !ok && l.logger != nil {
		// Lease expired before release; whoever holds the name now keeps it.
		l.logger.WithField("lock", l.name).Debug("lock already expired at release time")
	}
}

// TryAcquire claims name atomically, retrying with doubling backoff until
// waitTime elapses. The claim itself is claim-or-fail: a cancelled wait can
// never leave a half-taken lock behind.
func (s *LockService) TryAcquire(ctx context.Context, name string, waitTime, leaseTime time.Duration) (ports.Lease, error) {
	token := []byte(uuid.NewString())
	deadline := time.Now().Add(waitTime)
	backoff := lockInitialBackoff

	for {
		ok, err := s.cache.SetIfAbsent(ctx, name, token, leaseTime)
		if err != nil {
			return nil, fmt.Errorf("claiming lock %q: %w", name, err)
		}
		if ok {
			observability.LockAcquisitions.WithLabelValues("acquired").Inc()
			return &lease{cache: s.cache, name: name, token: token, logger: s.logger}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			observability.LockAcquisitions.WithLabelValues("contended").Inc()
			return nil, fmt.Errorf("lock %q: %w", name, ports.ErrLockNotAcquired)
		}

		wait := backoff
		if wait > remaining {
			wait = remaining
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			observability.LockAcquisitions.WithLabelValues("contended").Inc()
			// Report cancellation as contention so callers surface "retry
			// later", while keeping the cause inspectable.
			return nil, fmt.Errorf("lock %q wait cancelled: %w: %w", name, ports.ErrLockNotAcquired, ctx.Err())
		case <-timer.C:
		}

		if backoff < lockMaxBackoff {
			backoff *= 2
			if backoff > lockMaxBackoff {
				backoff = lockMaxBackoff
			}
		}
	}
}
