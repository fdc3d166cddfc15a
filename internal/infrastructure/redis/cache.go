package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// unlockScript deletes a key only if it still holds the caller's value.
// GET+DEL would race: the lease could expire and another holder claim the
// key between the two commands.
var unlockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

// RedisCache implements ports.Cache using a Redis client. Keys are stored
// verbatim: the data/lock key formats ("dish:<id>", "lock:<scope>:<id>",
// the literal "NULL" marker) must stay byte-identical to interoperate with
// any cache content written by other deployments.
type RedisCache struct {
	r redis.Cmdable
}

// NewRedisCache creates a new Redis-backed cache.
func NewRedisCache(r redis.Cmdable) *RedisCache {
	return &RedisCache{r: r}
}

// Get implements Cache.Get.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.r.Set(ctx, key, value, ttl).Err()
}

// Delete implements Cache.Delete.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.r.Del(ctx, key).Err()
}

// SetIfAbsent implements Cache.SetIfAbsent on top of SET NX.
func (c *RedisCache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return c.r.SetNX(ctx, key, value, ttl).Result()
}

// DeleteIfValue implements Cache.DeleteIfValue with a compare-and-delete script.
func (c *RedisCache) DeleteIfValue(ctx context.Context, key string, value []byte) (bool, error) {
	n, err := unlockScript.Run(ctx, c.r, []string{key}, string(value)).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
