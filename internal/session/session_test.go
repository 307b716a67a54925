package session

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/bewatu/internal/network"
)

func sampleData() *network.Data {
	return &network.Data{
		Users: []*network.User{{ID: 1, Name: "Ada"}},
		Posts: []*network.Post{{ID: 1, AuthorID: 1, Content: "hello", Timestamp: "Just now"}},
	}
}

func exerciseStore(t *testing.T, store Store, sessionID string) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty store, got %v", err)
	}

	if err := store.Set(ctx, sessionID, sampleData()); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Posts) != 1 || got.Posts[0].Content != "hello" {
		t.Fatalf("unexpected cached data: %+v", got)
	}

	// mutating the returned snapshot must not leak into the cache
	got.Posts[0].Content = "changed"
	again, err := store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Posts[0].Content != "hello" {
		t.Fatalf("cache shares state with callers")
	}

	if err := store.Clear(ctx, sessionID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.Get(ctx, sessionID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}

	if err := store.Set(ctx, "  ", sampleData()); err == nil {
		t.Fatal("expected error for blank session id")
	}
	if err := store.Set(ctx, sessionID, nil); err == nil {
		t.Fatal("expected error for nil data")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory(time.Minute), "session-1")
}

func TestMemoryStoreExpires(t *testing.T) {
	store := NewMemory(time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	if err := store.Set(ctx, "s", sampleData()); err != nil {
		t.Fatalf("set: %v", err)
	}

	now = now.Add(30 * time.Second)
	if _, err := store.Get(ctx, "s"); err != nil {
		t.Fatalf("expected entry before ttl, got %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, "s"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected entry to expire, got %v", err)
	}
}

// TestRedisStore requires a Redis instance on localhost:6379 and is skipped
// when none is reachable.
func TestRedisStore(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}
	defer client.Close()

	prefix := "bewatu-test-" + strconv.FormatInt(time.Now().UnixNano(), 10) + ":"
	store := NewRedisWithClient(client, prefix, time.Minute)

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check: %v", err)
	}

	exerciseStore(t, store, "session-1")
}

func TestNewRedisRequiresAddress(t *testing.T) {
	if _, err := NewRedis(context.Background(), RedisOptions{}); err == nil {
		t.Fatal("expected error without address")
	}
}
