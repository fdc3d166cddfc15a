package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/emberwok/takeout/configs"
	"github.com/emberwok/takeout/internal/core/domain/dish"
	"github.com/emberwok/takeout/internal/core/ports"
	"github.com/emberwok/takeout/internal/observability"
)

// Cache key formats are fixed for interoperability with existing cache
// content: "<entity>:<id>" for data keys, the literal "NULL" for negative
// markers, "lock:<entity>:<id>" for fill locks.
const (
	dishKeyPrefix     = "dish:"
	dishListKeyPrefix = "dishes:cat:"
	dishLockPrefix    = "lock:dish:"
	dishListLockPrefix = "lock:dishes:cat:"
	nullMarker        = "NULL"
)

// fillGroup coalesces concurrent cache-miss fills inside this process, in
// front of the distributed fill lock. Local duplicate readers share one
// lock acquisition instead of each hammering the cache store.
var fillGroup singleflight.Group

// fillDeps carries the collaborators a read-through fill needs.
type fillDeps struct {
	cache  ports.Cache
	locker ports.Locker
	cfg    *configs.CacheConfig
	logger *logrus.Logger
}

// jitteredTTL spreads expirations: entries cached in the same burst get
// base plus a uniformly random extra, so they do not all expire at once.
func jitteredTTL(base, jitter time.Duration) time.Duration {
	if jitter <= 0 {
		return base
	}
	return base + time.Duration(rand.Int63n(int64(jitter)))
}

// cacheRead inspects the cache for key. found=false means unknown (a true
// miss); absent=true means the store previously confirmed the entity does
// not exist (negative marker).
func cacheRead[T any](ctx context.Context, d fillDeps, key, entity string) (value T, absent, found bool, err error) {
	raw, ok, err := d.cache.Get(ctx, key)
	if err != nil || !ok {
		return value, false, false, err
	}
	if string(raw) == nullMarker {
		observability.CacheNegativeHits.WithLabelValues(entity).Inc()
		return value, true, true, nil
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		// A corrupt entry is treated as a miss; the fill will overwrite it.
		if d.logger != nil {
			d.logger.WithError(err).WithField("key", key).Warn("dropping undecodable cache entry")
		}
		return value, false, false, nil
	}
	observability.CacheHits.WithLabelValues(entity).Inc()
	return value, false, true, nil
}

// cacheWrite stores v (or the negative marker when absent) best-effort.
// Caching is never load-bearing for correctness: failures are logged and
// swallowed.
func cacheWrite(ctx context.Context, d fillDeps, key string, v any, absent bool) {
	var (
		raw []byte
		ttl time.Duration
		err error
	)
	if absent {
		raw, ttl = []byte(nullMarker), d.cfg.NegativeTTL
	} else {
		ttl = jitteredTTL(d.cfg.BaseTTL, d.cfg.Jitter)
		if raw, err = json.Marshal(v); err != nil {
			return
		}
	}
	if err := d.cache.Set(ctx, key, raw, ttl); err != nil && d.logger != nil {
		d.logger.WithError(err).WithField("key", key).Warn("cache write-back failed")
	}
}

type fillResult[T any] struct {
	value  T
	absent bool
}

// fillLocked resolves a miss under the distributed fill lock: re-check the
// cache (another caller may have filled it between our first read and the
// lock grant), then hit the authoritative store and write back.
func fillLocked[T any](ctx context.Context, d fillDeps, key, lockName, entity string, notFound error, fetch func(context.Context) (T, error)) (*fillResult[T], error) {
	l, err := d.locker.TryAcquire(ctx, lockName, d.cfg.FillLockWait, d.cfg.FillLockLease)
	if err != nil {
		return nil, err
	}
	defer l.Release(ctx)

	if v, absent, found, err := cacheRead[T](ctx, d, key, entity); err == nil && found {
		return &fillResult[T]{value: v, absent: absent}, nil
	}

	observability.CacheMisses.WithLabelValues(entity).Inc()
	v, err := fetch(ctx)
	if err != nil {
		if notFound != nil && errors.Is(err, notFound) {
			cacheWrite(ctx, d, key, nil, true)
			return &fillResult[T]{absent: true}, nil
		}
		return nil, err
	}
	cacheWrite(ctx, d, key, v, false)
	return &fillResult[T]{value: v}, nil
}

// readThrough is cache-aside with single-flight fill and negative caching.
// On a fast-path hit nothing is locked. On a miss it takes the fill lock,
// double-checks, fetches, writes back with a jittered TTL. When the lock is
// contended it sleeps briefly and retries the whole read — a bounded loop,
// not recursion — and gives up with ErrCacheBusy once the budget is spent.
// A failing cache read degrades to a direct authoritative fetch.
func readThrough[T any](ctx context.Context, d fillDeps, key, lockName, entity string, notFound error, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := d.cfg.FillRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		v, absent, found, err := cacheRead[T](ctx, d, key, entity)
		if err != nil {
			if d.logger != nil {
				d.logger.WithError(err).WithField("key", key).Warn("cache unavailable, falling back to store")
			}
			return fetch(ctx)
		}
		if found {
			if absent {
				return zero, notFound
			}
			return v, nil
		}

		res, err, _ := fillGroup.Do(key, func() (any, error) {
			return fillLocked(ctx, d, key, lockName, entity, notFound, fetch)
		})
		if err != nil {
			if errors.Is(err, ports.ErrLockNotAcquired) {
				observability.CacheFillContended.WithLabelValues(entity).Inc()
				select {
				case <-ctx.Done():
					return zero, fmt.Errorf("cache fill for %q: %w", key, ctx.Err())
				case <-time.After(d.cfg.FillRetryWait):
				}
				continue
			}
			return zero, err
		}
		fr := res.(*fillResult[T])
		if fr.absent {
			return zero, notFound
		}
		return fr.value, nil
	}
	return zero, fmt.Errorf("key %q: %w", key, ports.ErrCacheBusy)
}

// CachingDishRepository decorates a DishRepository with the read-through
// cache. Reads serve the assembled dish view (dish plus flavors) from the
// cache; every mutation invalidates the affected keys before its lock is
// released, so the next reader refills from fresh data.
type CachingDishRepository struct {
	inner ports.DishRepository
	deps  fillDeps
}

func NewCachingDishRepository(inner ports.DishRepository, cache ports.Cache, locker ports.Locker, cfg *configs.CacheConfig, logger *logrus.Logger) ports.DishRepository {
	return &CachingDishRepository{
		inner: inner,
		deps:  fillDeps{cache: cache, locker: locker, cfg: cfg, logger: logger},
	}
}

func dishKey(id int64) string     { return dishKeyPrefix + strconv.FormatInt(id, 10) }
func dishLock(id int64) string    { return dishLockPrefix + strconv.FormatInt(id, 10) }
func dishListKey(cat int64) string  { return dishListKeyPrefix + strconv.FormatInt(cat, 10) }
func dishListLock(cat int64) string { return dishListLockPrefix + strconv.FormatInt(cat, 10) }

func (c *CachingDishRepository) GetView(ctx context.Context, id int64) (*dish.View, error) {
	return readThrough(ctx, c.deps, dishKey(id), dishLock(id), "dish", ports.ErrDishNotFound,
		func(ctx context.Context) (*dish.View, error) {
			return c.inner.GetView(ctx, id)
		})
}

func (c *CachingDishRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error) {
	return readThrough(ctx, c.deps, dishListKey(categoryID), dishListLock(categoryID), "dish_list", nil,
		func(ctx context.Context) ([]*dish.View, error) {
			return c.inner.ListByCategory(ctx, categoryID)
		})
}

func (c *CachingDishRepository) Create(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	if err := c.inner.Create(ctx, d, flavors); err != nil {
		return err
	}
	// A negative marker may be cached for this id from before the insert.
	c.invalidate(ctx, dishKey(d.ID), dishListKey(d.CategoryID))
	return nil
}

func (c *CachingDishRepository) Update(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	if err := c.inner.Update(ctx, d, flavors); err != nil {
		return err
	}
	c.invalidate(ctx, dishKey(d.ID), dishListKey(d.CategoryID))
	return nil
}

func (c *CachingDishRepository) Delete(ctx context.Context, id int64) error {
	// Need the category to invalidate the list entry too.
	v, _ := c.inner.GetView(ctx, id)
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	keys := []string{dishKey(id)}
	if v != nil {
		keys = append(keys, dishListKey(v.CategoryID))
	}
	c.invalidate(ctx, keys...)
	return nil
}

func (c *CachingDishRepository) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := c.deps.cache.Delete(ctx, key); err != nil && c.deps.logger != nil {
			c.deps.logger.WithError(err).WithField("key", key).Warn("cache invalidation failed; entry will expire by TTL")
		}
	}
}

var _ ports.DishRepository = (*CachingDishRepository)(nil)
