package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// setupTestRedis creates a test Redis client.
// Tests are skipped when no local Redis is available; the integration
// suite runs the same checks against a container.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // Use a separate DB for tests
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}

	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test DB: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})

	return client
}

func TestNewRedis_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewRedis should panic with nil redis client")
		}
	}()
	NewRedis(nil, "s", time.Minute, zerolog.Nop())
}

func TestNewRedis_DefaultTTL(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	l := NewRedis(client, "s", 0, zerolog.Nop())
	if l.ttl != DefaultSessionTTL {
		t.Errorf("ttl = %v, want %v", l.ttl, DefaultSessionTTL)
	}
}

func TestRedis_RecordAndIsLoaded(t *testing.T) {
	client := setupTestRedis(t)
	l := NewRedis(client, "session-a", time.Minute, zerolog.Nop())
	ctx := context.Background()

	loaded, err := l.IsLoaded(ctx, 3, 2)
	if err != nil {
		t.Fatalf("IsLoaded() error = %v", err)
	}
	if loaded {
		t.Error("IsLoaded() = true before Record")
	}

	if err := l.Record(ctx, 3, 2); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	loaded, err = l.IsLoaded(ctx, 3, 2)
	if err != nil {
		t.Fatalf("IsLoaded() error = %v", err)
	}
	if !loaded {
		t.Error("IsLoaded() = false after Record")
	}

	ttl, err := client.TTL(ctx, Key{Session: "session-a", Query: 3}.String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("key TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRedis_SessionsAreIsolated(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	a := NewRedis(client, "a", time.Minute, zerolog.Nop())
	b := NewRedis(client, "b", time.Minute, zerolog.Nop())

	_ = a.Record(ctx, 1, 2)

	if loaded, _ := b.IsLoaded(ctx, 1, 2); loaded {
		t.Error("page recorded in session a is visible in session b")
	}

	if err := b.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if loaded, _ := a.IsLoaded(ctx, 1, 2); !loaded {
		t.Error("resetting session b cleared session a")
	}

	if err := a.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if loaded, _ := a.IsLoaded(ctx, 1, 2); loaded {
		t.Error("IsLoaded() = true after Reset")
	}
}
