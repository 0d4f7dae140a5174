package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Requires Redis running on localhost:6379; tests skip otherwise.
const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T, prefix string) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}

	cache := New(client, prefix, time.Minute)
	if err := cache.DeletePattern(ctx, "*"); err != nil {
		t.Fatalf("failed to clean test keys: %v", err)
	}
	t.Cleanup(func() {
		_ = cache.DeletePattern(ctx, "*")
		_ = client.Close()
	})
	return cache
}

type page struct {
	IDs   []int64 `json:"ids"`
	Total int     `json:"total"`
}

func TestCache_GetSet(t *testing.T) {
	cache := setupTestCache(t, "taskboard-test:getset:")
	ctx := context.Background()

	var got page
	hit, err := cache.Get(ctx, "list:a", &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Fatal("Get() on empty cache reported a hit")
	}

	want := page{IDs: []int64{3, 2, 1}, Total: 3}
	if err := cache.Set(ctx, "list:a", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	hit, err = cache.Get(ctx, "list:a", &got)
	if err != nil || !hit {
		t.Fatalf("Get() hit = %v, error = %v", hit, err)
	}
	if got.Total != want.Total || len(got.IDs) != 3 {
		t.Errorf("Get() = %+v, want %+v", got, want)
	}

	stats := cache.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Sets != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.HitRate != 50 {
		t.Errorf("HitRate = %v, want 50", stats.HitRate)
	}
}

func TestCache_DeletePattern(t *testing.T) {
	cache := setupTestCache(t, "taskboard-test:pattern:")
	ctx := context.Background()

	for _, key := range []string{"list:1", "list:2", "list:3", "other"} {
		if err := cache.Set(ctx, key, page{Total: 1}); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	if err := cache.DeletePattern(ctx, "list:*"); err != nil {
		t.Fatalf("DeletePattern() error = %v", err)
	}

	var p page
	for _, key := range []string{"list:1", "list:2", "list:3"} {
		if hit, _ := cache.Get(ctx, key, &p); hit {
			t.Errorf("%q survived DeletePattern", key)
		}
	}
	if hit, _ := cache.Get(ctx, "other", &p); !hit {
		t.Error("DeletePattern removed a key outside the pattern")
	}
}

func TestCache_SetWithTTLExpires(t *testing.T) {
	cache := setupTestCache(t, "taskboard-test:ttl:")
	ctx := context.Background()

	if err := cache.SetWithTTL(ctx, "short", page{Total: 1}, 50*time.Millisecond); err != nil {
		t.Fatalf("SetWithTTL() error = %v", err)
	}
	time.Sleep(150 * time.Millisecond)

	var p page
	if hit, _ := cache.Get(ctx, "short", &p); hit {
		t.Error("value should have expired")
	}
}

func TestCache_GetReportsConnectionErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	defer client.Close()
	cache := New(client, "x:", time.Minute)

	var p page
	hit, err := cache.Get(context.Background(), "k", &p)
	if err == nil || hit {
		t.Fatalf("Get() hit = %v, error = %v, want connection error", hit, err)
	}
	if cache.Stats().Errors != 1 {
		t.Errorf("Errors = %d, want 1", cache.Stats().Errors)
	}
}

func TestCache_IncrIsReadableThroughGet(t *testing.T) {
	cache := setupTestCache(t, "taskboard-test:incr:")
	ctx := context.Background()

	for want := int64(1); want <= 2; want++ {
		n, err := cache.Incr(ctx, "gen")
		if err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
		if n != want {
			t.Errorf("Incr() = %d, want %d", n, want)
		}
	}

	var gen int64
	hit, err := cache.Get(ctx, "gen", &gen)
	if err != nil || !hit {
		t.Fatalf("Get() hit = %v, error = %v", hit, err)
	}
	if gen != 2 {
		t.Errorf("Get() = %d, want 2", gen)
	}
}
