package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisQuotaRepo implements the QuotaStore interface using Redis counters.
// The cap check and increment run in one Lua script so concurrent acquires
// can never overshoot the limit.
type RedisQuotaRepo struct {
	client redis.UniversalClient
}

// NewRedisQuotaRepo creates a new RedisQuotaRepo with the given Redis client.
func NewRedisQuotaRepo(client redis.UniversalClient) *RedisQuotaRepo {
	return &RedisQuotaRepo{client: client}
}

// incrWithCapScript increments KEYS[1] unless the result would exceed
// ARGV[1]; ARGV[2] is the TTL in milliseconds, applied only when the key is
// created so the counter expires at a stable instant (day rollover).
var incrWithCapScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local limit = tonumber(ARGV[1])
	if current + 1 > limit then
		return {current, 0}
	end
	current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	return {current, 1}
`)

// IncrWithCap atomically increments the counter at key unless that would
// exceed limit. Returns the resulting count and whether the increment applied.
func (r *RedisQuotaRepo) IncrWithCap(ctx context.Context, key string, limit int64, ttl time.Duration) (int64, bool, error) {
	if key == "" {
		return 0, false, errors.New("key cannot be empty")
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	res, err := incrWithCapScript.Run(ctx, r.client, []string{key}, limit, ttl.Milliseconds()).Slice()
	if err != nil {
		return 0, false, fmt.Errorf("redis incr with cap: %w", err)
	}
	if len(res) != 2 {
		return 0, false, fmt.Errorf("redis incr with cap: unexpected reply of %d elements", len(res))
	}
	count, ok1 := res[0].(int64)
	applied, ok2 := res[1].(int64)
	if !ok1 || !ok2 {
		return 0, false, errors.New("redis incr with cap: unexpected reply types")
	}
	return count, applied == 1, nil
}

// Decr returns quota for a granted action that never completed. The counter
// is floored at zero so a late release after day rollover cannot go negative.
func (r *RedisQuotaRepo) Decr(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, errors.New("key cannot be empty")
	}

	val, err := decrFloorScript.Run(ctx, r.client, []string{key}).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis decr counter: %w", err)
	}
	return val, nil
}

var decrFloorScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	if current <= 0 then
		return 0
	end
	return redis.call('DECR', KEYS[1])
`)

// Count returns the current counter value, 0 when the key is absent.
func (r *RedisQuotaRepo) Count(ctx context.Context, key string) (int64, error) {
	if key == "" {
		return 0, errors.New("key cannot be empty")
	}

	val, err := r.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get counter: %w", err)
	}
	return val, nil
}

// Health checks the health of the Redis connection.
func (r *RedisQuotaRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// RedisConfig holds configuration for the Redis connection.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// DefaultRedisConfig returns a RedisConfig with sensible defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379"}
}

// NewRedisClient creates a new Redis client with the given configuration.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
