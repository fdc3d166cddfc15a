package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/configs"
	"github.com/emberwok/takeout/internal/core/ports"
)

// LockScope selects the per-user lock namespace a mutation runs under.
type LockScope string

const (
	ScopeOrderSubmit LockScope = "order:submit"
	ScopeCartOp      LockScope = "cart:operation"
)

// LockName builds the lock key for a scope and user. The format is fixed:
// existing deployments already hold locks under these names.
func (s LockScope) LockName(userID int64) string {
	return "lock:" + string(s) + ":" + strconv.FormatInt(userID, 10)
}

// MutationGuard serializes order submission and cart mutations per user.
// The threat model is the same user double-tapping submit: both requests
// race to the authoritative write, and without the lock both would commit.
type MutationGuard struct {
	locker ports.Locker
	cfg    *configs.LockConfig
	logger *logrus.Logger
}

func NewMutationGuard(locker ports.Locker, cfg *configs.LockConfig, logger *logrus.Logger) *MutationGuard {
	return &MutationGuard{locker: locker, cfg: cfg, logger: logger}
}

// WithUserLock runs fn while holding the scope's lock for userID. On
// contention it returns an error satisfying
// errors.Is(err, ports.ErrLockNotAcquired) without running fn; the caller
// must surface that as "please retry", never proceed silently. The lock is
// released whether fn succeeds or fails, so any cache invalidation fn
// performs happens inside the lease.
func (g *MutationGuard) WithUserLock(ctx context.Context, userID int64, scope LockScope, fn func(ctx context.Context) error) error {
	wait, leaseTime := g.cfg.SubmitWait, g.cfg.SubmitLease
	if scope == ScopeCartOp {
		wait, leaseTime = g.cfg.CartWait, g.cfg.CartLease
	}

	name := scope.LockName(userID)
	l, err := g.locker.TryAcquire(ctx, name, wait, leaseTime)
	if err != nil {
		if g.logger != nil {
			g.logger.WithFields(logrus.Fields{"user_id": userID, "scope": scope}).Info("user mutation lock contended")
		}
		return fmt.Errorf("user %d %s: %w", userID, scope, err)
	}
	defer l.Release(ctx)

	return fn(ctx)
}
