package services_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/emberwok/takeout/internal/core/domain/cart"
	"github.com/emberwok/takeout/internal/core/domain/dish"
	"github.com/emberwok/takeout/internal/core/domain/employee"
	"github.com/emberwok/takeout/internal/core/domain/order"
	"github.com/emberwok/takeout/internal/core/ports"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memCache is an in-memory ports.Cache with real TTL semantics, so lock
// leases and negative markers expire the way they would in the cache store.
type memCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiration
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

// force plants an entry directly, bypassing the public contract.
func (c *memCache) force(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{value: value}
}

type leaseMock struct {
	ReleaseFn func(ctx context.Context)
}

func (l *leaseMock) Release(ctx context.Context) {
	if l.ReleaseFn != nil {
		l.ReleaseFn(ctx)
	}
}

type lockerMock struct {
	TryAcquireFn func(ctx context.Context, name string, waitTime, leaseTime time.Duration) (ports.Lease, error)
}

func (m *lockerMock) TryAcquire(ctx context.Context, name string, waitTime, leaseTime time.Duration) (ports.Lease, error) {
	return m.TryAcquireFn(ctx, name, waitTime, leaseTime)
}

type orderRepoMock struct {
	CreateFn                func(ctx context.Context, o *order.Order, details []order.Detail) error
	GetByIDFn               func(ctx context.Context, id int64) (*order.Order, error)
	ListByStatusOlderThanFn func(ctx context.Context, status order.Status, cutoff time.Time) ([]*order.Order, error)
	UpdateFn                func(ctx context.Context, o *order.Order) error
}

func (m *orderRepoMock) Create(ctx context.Context, o *order.Order, details []order.Detail) error {
	return m.CreateFn(ctx, o, details)
}

func (m *orderRepoMock) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *orderRepoMock) ListByStatusOlderThan(ctx context.Context, status order.Status, cutoff time.Time) ([]*order.Order, error) {
	return m.ListByStatusOlderThanFn(ctx, status, cutoff)
}

func (m *orderRepoMock) Update(ctx context.Context, o *order.Order) error {
	return m.UpdateFn(ctx, o)
}

type cartRepoMock struct {
	FindFn         func(ctx context.Context, userID, dishID int64, flavor string) (*cart.Item, error)
	InsertFn       func(ctx context.Context, item *cart.Item) error
	UpdateNumberFn func(ctx context.Context, id int64, number int) error
	ListFn         func(ctx context.Context, userID int64) ([]*cart.Item, error)
	CleanFn        func(ctx context.Context, userID int64) error
}

func (m *cartRepoMock) Find(ctx context.Context, userID, dishID int64, flavor string) (*cart.Item, error) {
	return m.FindFn(ctx, userID, dishID, flavor)
}

func (m *cartRepoMock) Insert(ctx context.Context, item *cart.Item) error {
	return m.InsertFn(ctx, item)
}

func (m *cartRepoMock) UpdateNumber(ctx context.Context, id int64, number int) error {
	return m.UpdateNumberFn(ctx, id, number)
}

func (m *cartRepoMock) List(ctx context.Context, userID int64) ([]*cart.Item, error) {
	return m.ListFn(ctx, userID)
}

func (m *cartRepoMock) Clean(ctx context.Context, userID int64) error {
	return m.CleanFn(ctx, userID)
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

type employeeRepoMock struct {
	GetByUsernameFn func(ctx context.Context, username string) (*employee.Employee, error)
	CreateFn        func(ctx context.Context, e *employee.Employee) error
}

func (m *employeeRepoMock) GetByUsername(ctx context.Context, username string) (*employee.Employee, error) {
	return m.GetByUsernameFn(ctx, username)
}

func (m *employeeRepoMock) Create(ctx context.Context, e *employee.Employee) error {
	return m.CreateFn(ctx, e)
}
