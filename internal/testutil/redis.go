package testutil

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// testRedisDB is a dedicated database index so test flushes cannot touch
// data kept in the default database.
const testRedisDB = 15

// SetupTestRedis creates a Redis client for integration tests and flushes the
// test database. Tests are skipped when Redis is unreachable unless
// TEST_REDIS_REQUIRED is set.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	addr := getEnvOrDefault("TEST_REDIS_ADDR", "localhost:6379")
	client := redis.NewClient(&redis.Options{Addr: addr, DB: testRedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			t.Logf("redis client close failed: %v", cerr)
		}
		if requireRedis() {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	client.FlushDB(ctx)
	return client
}

func requireRedis() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("TEST_REDIS_REQUIRED")))
	return v == "1" || v == "true" || v == "yes"
}
