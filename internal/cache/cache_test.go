package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Minute)

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	now = now.Add(2 * time.Minute)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestMemory_Delete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(0)

	_ = c.Set(ctx, "a", []byte("1"))
	_ = c.Set(ctx, "b", []byte("2"))

	if err := c.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "a"); ok {
		t.Fatalf("expected a to be deleted")
	}
	if _, ok, _ := c.Get(ctx, "b"); ok {
		t.Fatalf("expected b to be deleted")
	}
}

func TestRedis_SetGetDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	c := NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 30*time.Second)
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping error: %v", err)
	}

	if _, ok, err := c.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", []byte(`[{"id":"1","name":"John"}]`)); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	if ttl := mr.TTL("k"); ttl != 30*time.Second {
		t.Fatalf("expected ttl 30s, got %v", ttl)
	}

	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != `[{"id":"1","name":"John"}]` {
		t.Fatalf("Get = %q, %v, %v", got, ok, err)
	}

	mr.FastForward(31 * time.Second)

	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatalf("expected key to expire")
	}

	_ = c.Set(ctx, "k", []byte("v"))
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if mr.Exists("k") {
		t.Fatalf("expected key to be deleted")
	}
}

func TestGeneration(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	stores := map[string]Store{
		"memory": NewMemory(time.Second),
		"redis":  NewRedisFromClient(client, time.Second),
	}

	for name, c := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if g, err := c.Generation(ctx, "gen"); err != nil || g != 0 {
				t.Fatalf("unset generation = %d, %v", g, err)
			}

			for want := int64(1); want <= 2; want++ {
				got, err := c.Bump(ctx, "gen")
				if err != nil || got != want {
					t.Fatalf("Bump = %d, %v, want %d", got, err, want)
				}
			}

			if g, err := c.Generation(ctx, "gen"); err != nil || g != 2 {
				t.Fatalf("generation = %d, %v, want 2", g, err)
			}
		})
	}
}
