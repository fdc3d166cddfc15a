package repositories

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/configs"
	"github.com/emberwok/takeout/internal/application/services"
	"github.com/emberwok/takeout/internal/core/domain/dish"
	"github.com/emberwok/takeout/internal/core/ports"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testCacheConfig() *configs.CacheConfig {
	return &configs.CacheConfig{
		BaseTTL:       time.Hour,
		Jitter:        10 * time.Minute,
		NegativeTTL:   5 * time.Minute,
		FillLockWait:  100 * time.Millisecond,
		FillLockLease: time.Second,
		FillRetries:   4,
		FillRetryWait: 5 * time.Millisecond,
	}
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value     []byte
	expiresAt time.Time
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]memEntry)}
}

func (c *memCache) live(key string) (memEntry, bool) {
	e, ok := c.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(c.entries, key)
		return memEntry{}, false
	}
	return e, true
}

func (c *memCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	if !ok {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *memCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *memCache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live(key); ok {
		return false, nil
	}
	e := memEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	c.entries[key] = e
	return true, nil
}

func (c *memCache) DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.live(key)
	if !ok || string(e.value) != string(value) {
		return false, nil
	}
	delete(c.entries, key)
	return true, nil
}

// downCache fails every operation, as a cache store outage would.
type downCache struct{}

var errCacheDown = errors.New("cache store unreachable")

func (downCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errCacheDown
}
func (downCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errCacheDown
}
func (downCache) Delete(ctx context.Context, key string) error { return errCacheDown }
func (downCache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return false, errCacheDown
}
func (downCache) DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	return false, errCacheDown
}

// contendedLocker never grants the fill lock.
type contendedLocker struct{}

func (contendedLocker) TryAcquire(ctx context.Context, name string, waitTime, leaseTime time.Duration) (ports.Lease, error) {
	return nil, fmt.Errorf("lock %q: %w", name, ports.ErrLockNotAcquired)
}

type dishRepoMock struct {
	CreateFn         func(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error
	GetViewFn        func(ctx context.Context, id int64) (*dish.View, error)
	ListByCategoryFn func(ctx context.Context, categoryID int64) ([]*dish.View, error)
	UpdateFn         func(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error
	DeleteFn         func(ctx context.Context, id int64) error
}

func (m *dishRepoMock) Create(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	return m.CreateFn(ctx, d, flavors)
}

func (m *dishRepoMock) GetView(ctx context.Context, id int64) (*dish.View, error) {
	return m.GetViewFn(ctx, id)
}

func (m *dishRepoMock) ListByCategory(ctx context.Context, categoryID int64) ([]*dish.View, error) {
	return m.ListByCategoryFn(ctx, categoryID)
}

func (m *dishRepoMock) Update(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
	return m.UpdateFn(ctx, d, flavors)
}

func (m *dishRepoMock) Delete(ctx context.Context, id int64) error {
	return m.DeleteFn(ctx, id)
}

func cachingRepo(inner ports.DishRepository, cache ports.Cache, cfg *configs.CacheConfig) ports.DishRepository {
	locker := services.NewLockService(cache, testLogger())
	return NewCachingDishRepository(inner, cache, locker, cfg, testLogger())
}

func TestKeyFormats(t *testing.T) {
	if got := dishKey(42); got != "dish:42" {
		t.Fatalf("dishKey = %q", got)
	}
	if got := dishLock(42); got != "lock:dish:42" {
		t.Fatalf("dishLock = %q", got)
	}
	if got := dishListKey(9); got != "dishes:cat:9" {
		t.Fatalf("dishListKey = %q", got)
	}
	if got := dishListLock(9); got != "lock:dishes:cat:9" {
		t.Fatalf("dishListLock = %q", got)
	}
}

func TestJitteredTTL_Bounds(t *testing.T) {
	base, jitter := time.Hour, 10*time.Minute
	seen := make(map[time.Duration]bool)
	for i := 0; i < 200; i++ {
		ttl := jitteredTTL(base, jitter)
		if ttl < base || ttl >= base+jitter {
			t.Fatalf("ttl %v outside [%v, %v)", ttl, base, base+jitter)
		}
		seen[ttl] = true
	}
	if len(seen) < 2 {
		t.Fatal("jitter produced a constant ttl")
	}
	if got := jitteredTTL(base, 0); got != base {
		t.Fatalf("zero jitter changed ttl to %v", got)
	}
}

func TestGetView_ReadThroughLifecycle(t *testing.T) {
	cache := newMemCache()
	var fetches int32
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			atomic.AddInt32(&fetches, 1)
			return &dish.View{Dish: dish.Dish{ID: id, Name: "Kung Pao Chicken", CategoryID: 9, Price: 1500}}, nil
		},
		UpdateFn: func(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error { return nil },
	}
	repo := cachingRepo(inner, cache, testCacheConfig())
	ctx := context.Background()

	// Miss fills the cache, hit serves from it.
	v, err := repo.GetView(ctx, 42)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	if v.Name != "Kung Pao Chicken" {
		t.Fatalf("wrong view: %+v", v)
	}
	if _, err := repo.GetView(ctx, 42); err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected one store fetch, got %d", n)
	}

	// A mutation invalidates; the next read refills.
	if err := repo.Update(ctx, &dish.Dish{ID: 42, CategoryID: 9, Name: "Kung Pao Chicken"}, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, ok, _ := cache.Get(ctx, "dish:42"); ok {
		t.Fatal("cache entry survived invalidation")
	}
	if _, err := repo.GetView(ctx, 42); err != nil {
		t.Fatalf("read after update failed: %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Fatalf("expected a refill after invalidation, got %d fetches", n)
	}
}

func TestGetView_SingleFetchUnderConcurrency(t *testing.T) {
	cache := newMemCache()
	var fetches int32
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			atomic.AddInt32(&fetches, 1)
			time.Sleep(20 * time.Millisecond) // slow store read
			return &dish.View{Dish: dish.Dish{ID: id, Name: "Mapo Tofu"}}, nil
		},
	}
	repo := cachingRepo(inner, cache, testCacheConfig())

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.GetView(context.Background(), 77)
			if err == nil && v.Name != "Mapo Tofu" {
				err = fmt.Errorf("wrong view: %+v", v)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent read failed: %v", err)
		}
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("expected a single coalesced fetch, got %d", n)
	}
}

func TestGetView_NegativeCaching(t *testing.T) {
	cache := newMemCache()
	cfg := testCacheConfig()
	cfg.NegativeTTL = 30 * time.Millisecond
	var fetches int32
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			atomic.AddInt32(&fetches, 1)
			return nil, ports.ErrDishNotFound
		},
	}
	repo := cachingRepo(inner, cache, cfg)
	ctx := context.Background()

	if _, err := repo.GetView(ctx, 404); !errors.Is(err, ports.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
	raw, ok, _ := cache.Get(ctx, "dish:404")
	if !ok || string(raw) != "NULL" {
		t.Fatalf("negative marker = %q ok=%v", raw, ok)
	}

	// Within the marker's TTL the store is not consulted again.
	if _, err := repo.GetView(ctx, 404); !errors.Is(err, ports.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 1 {
		t.Fatalf("marker did not absorb the repeat read: %d fetches", n)
	}

	// After expiry the read goes back to the store.
	time.Sleep(40 * time.Millisecond)
	if _, err := repo.GetView(ctx, 404); !errors.Is(err, ports.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Fatalf("expected a fresh fetch after marker expiry, got %d", n)
	}
}

func TestGetView_CreateClearsNegativeMarker(t *testing.T) {
	cache := newMemCache()
	var present atomic.Bool
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			if !present.Load() {
				return nil, ports.ErrDishNotFound
			}
			return &dish.View{Dish: dish.Dish{ID: id, Name: "Twice Cooked Pork", CategoryID: 3}}, nil
		},
		CreateFn: func(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error {
			d.ID = 55
			present.Store(true)
			return nil
		},
	}
	repo := cachingRepo(inner, cache, testCacheConfig())
	ctx := context.Background()

	if _, err := repo.GetView(ctx, 55); !errors.Is(err, ports.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}

	if err := repo.Create(ctx, &dish.Dish{CategoryID: 3, Name: "Twice Cooked Pork"}, nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	v, err := repo.GetView(ctx, 55)
	if err != nil {
		t.Fatalf("read after create failed: %v", err)
	}
	if v.Name != "Twice Cooked Pork" {
		t.Fatalf("stale negative result: %+v", v)
	}
}

func TestListByCategory_CachedSeparatelyFromDishes(t *testing.T) {
	cache := newMemCache()
	var listFetches int32
	inner := &dishRepoMock{
		ListByCategoryFn: func(ctx context.Context, categoryID int64) ([]*dish.View, error) {
			atomic.AddInt32(&listFetches, 1)
			return []*dish.View{
				{Dish: dish.Dish{ID: 1, CategoryID: categoryID, Name: "Kung Pao Chicken"}},
				{Dish: dish.Dish{ID: 2, CategoryID: categoryID, Name: "Mapo Tofu"}},
			}, nil
		},
		UpdateFn: func(ctx context.Context, d *dish.Dish, flavors []dish.Flavor) error { return nil },
	}
	repo := cachingRepo(inner, cache, testCacheConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		views, err := repo.ListByCategory(ctx, 9)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if len(views) != 2 {
			t.Fatalf("got %d views", len(views))
		}
	}
	if n := atomic.LoadInt32(&listFetches); n != 1 {
		t.Fatalf("expected one list fetch, got %d", n)
	}

	// Updating a dish in the category drops the list entry too.
	if err := repo.Update(ctx, &dish.Dish{ID: 1, CategoryID: 9}, nil); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := repo.ListByCategory(ctx, 9); err != nil {
		t.Fatalf("list after update failed: %v", err)
	}
	if n := atomic.LoadInt32(&listFetches); n != 2 {
		t.Fatalf("expected a list refill after update, got %d fetches", n)
	}
}

func TestGetView_CacheOutageFallsBackToStore(t *testing.T) {
	var fetches int32
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			atomic.AddInt32(&fetches, 1)
			return &dish.View{Dish: dish.Dish{ID: id, Name: "Hot And Sour Soup"}}, nil
		},
	}
	locker := services.NewLockService(newMemCache(), testLogger())
	repo := NewCachingDishRepository(inner, downCache{}, locker, testCacheConfig(), testLogger())

	for i := 0; i < 2; i++ {
		v, err := repo.GetView(context.Background(), 13)
		if err != nil {
			t.Fatalf("read %d failed: %v", i, err)
		}
		if v.Name != "Hot And Sour Soup" {
			t.Fatalf("wrong view: %+v", v)
		}
	}
	if n := atomic.LoadInt32(&fetches); n != 2 {
		t.Fatalf("expected every read to hit the store during outage, got %d", n)
	}
}

func TestGetView_FillContentionExhaustsToBusy(t *testing.T) {
	cfg := testCacheConfig()
	cfg.FillRetries = 3
	cfg.FillRetryWait = time.Millisecond
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			t.Fatal("store must not be read without the fill lock")
			return nil, nil
		},
	}
	repo := NewCachingDishRepository(inner, newMemCache(), contendedLocker{}, cfg, testLogger())

	_, err := repo.GetView(context.Background(), 88)
	if !errors.Is(err, ports.ErrCacheBusy) {
		t.Fatalf("expected ErrCacheBusy, got %v", err)
	}
}

func TestGetView_CorruptEntryRefilled(t *testing.T) {
	cache := newMemCache()
	var fetches int32
	inner := &dishRepoMock{
		GetViewFn: func(ctx context.Context, id int64) (*dish.View, error) {
			atomic.AddInt32(&fetches, 1)
			return &dish.View{Dish: dish.Dish{ID: id, Name: "Dan Dan Noodles"}}, nil
		},
	}
	repo := cachingRepo(inner, cache, testCacheConfig())
	ctx := context.Background()

	if err := cache.Set(ctx, "dish:66", []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("seeding corrupt entry: %v", err)
	}

	v, err := repo.GetView(ctx, 66)
	if err != nil {
		t.Fatalf("read over corrupt entry failed: %v", err)
	}
	if v.Name != "Dan Dan Noodles" || atomic.LoadInt32(&fetches) != 1 {
		t.Fatalf("corrupt entry not replaced by store read: %+v fetches=%d", v, fetches)
	}
}
