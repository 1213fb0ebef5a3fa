package cached_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/geocoder89/subscriberhub/internal/cache"
	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/observability"
	"github.com/geocoder89/subscriberhub/internal/repo/cached"
	"github.com/geocoder89/subscriberhub/internal/repo/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
)

type countingRepo struct {
	*memory.SubscribersRepo
	lists int
	gets  int
}

func (c *countingRepo) List(ctx context.Context) ([]subscriber.Summary, error) {
	c.lists++
	return c.SubscribersRepo.List(ctx)
}

func (c *countingRepo) GetByID(ctx context.Context, id string) (subscriber.Summary, error) {
	c.gets++
	return c.SubscribersRepo.GetByID(ctx, id)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}

func (brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("redis down")
}

func (brokenStore) Delete(context.Context, ...string) error {
	return errors.New("redis down")
}

func (brokenStore) Generation(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

func (brokenStore) Bump(context.Context, string) (int64, error) {
	return 0, errors.New("redis down")
}

// pausingRepo holds List after the backing read until release is closed.
type pausingRepo struct {
	*memory.SubscribersRepo
	read    chan struct{}
	release chan struct{}
	paused  bool
}

func (p *pausingRepo) List(ctx context.Context) ([]subscriber.Summary, error) {
	items, err := p.SubscribersRepo.List(ctx)
	if !p.paused {
		p.paused = true
		close(p.read)
		<-p.release
	}
	return items, err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stores(t *testing.T) map[string]cache.Store {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]cache.Store{
		"memory": cache.NewMemory(time.Minute),
		"redis":  cache.NewRedisFromClient(client, time.Minute),
	}
}

func TestSubscribersRepo_ListIsCachedAndInvalidated(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inner := &countingRepo{SubscribersRepo: memory.NewSubscribersRepo()}
			repo := cached.NewSubscribersRepo(inner, store, discardLogger())

			if err := repo.Insert(ctx, subscriber.Subscriber{ID: "1", Name: "John"}); err != nil {
				t.Fatalf("Insert error: %v", err)
			}

			for i := 0; i < 3; i++ {
				list, err := repo.List(ctx)
				if err != nil {
					t.Fatalf("List error: %v", err)
				}
				if len(list) != 1 || list[0].Name != "John" {
					t.Fatalf("unexpected list %+v", list)
				}
			}

			if inner.lists != 1 {
				t.Fatalf("expected one backing list call, got %d", inner.lists)
			}

			if err := repo.Insert(ctx, subscriber.Subscriber{ID: "2", Name: "Jane"}); err != nil {
				t.Fatalf("Insert error: %v", err)
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List error: %v", err)
			}
			if len(list) != 2 {
				t.Fatalf("expected fresh list after insert, got %+v", list)
			}
			if inner.lists != 2 {
				t.Fatalf("expected cache invalidation on insert, got %d backing calls", inner.lists)
			}
		})
	}
}

func TestSubscribersRepo_GetCachesHitsOnly(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inner := &countingRepo{SubscribersRepo: memory.NewSubscribersRepo()}
			repo := cached.NewSubscribersRepo(inner, store, discardLogger())

			if _, err := repo.GetByID(ctx, "1"); !errors.Is(err, subscriber.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := repo.Insert(ctx, subscriber.Subscriber{ID: "1", Name: "John"}); err != nil {
				t.Fatalf("Insert error: %v", err)
			}

			for i := 0; i < 2; i++ {
				got, err := repo.GetByID(ctx, "1")
				if err != nil {
					t.Fatalf("GetByID error: %v", err)
				}
				if got != (subscriber.Summary{ID: "1", Name: "John"}) {
					t.Fatalf("unexpected summary %+v", got)
				}
			}

			if inner.gets != 2 {
				t.Fatalf("expected miss + one fill, got %d backing calls", inner.gets)
			}
		})
	}
}

func TestSubscribersRepo_BrokenCacheFallsThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{SubscribersRepo: memory.NewSubscribersRepo()}
	repo := cached.NewSubscribersRepo(inner, brokenStore{}, discardLogger())

	if err := repo.Insert(ctx, subscriber.Subscriber{ID: "1", Name: "John"}); err != nil {
		t.Fatalf("Insert must succeed when cache is down: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("List = %+v, %v", list, err)
	}

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping error: %v", err)
	}
}

func TestSubscribersRepo_CountsLookups(t *testing.T) {
	ctx := context.Background()
	prom := observability.NewProm(prometheus.NewRegistry())
	repo := cached.NewSubscribersRepo(memory.NewSubscribersRepo(), cache.NewMemory(time.Minute), discardLogger(), cached.WithProm(prom))

	for i := 0; i < 2; i++ {
		if _, err := repo.List(ctx); err != nil {
			t.Fatalf("List error: %v", err)
		}
	}

	if got := testutil.ToFloat64(prom.CacheLookups.WithLabelValues("list", "miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(prom.CacheLookups.WithLabelValues("list", "hit")); got != 1 {
		t.Fatalf("expected 1 hit, got %v", got)
	}
}

func TestSubscribersRepo_ListRacingInsertDoesNotPinStaleList(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			inner := &pausingRepo{
				SubscribersRepo: memory.NewSubscribersRepo(),
				read:            make(chan struct{}),
				release:         make(chan struct{}),
			}
			repo := cached.NewSubscribersRepo(inner, store, discardLogger())

			done := make(chan []subscriber.Summary)
			go func() {
				items, _ := repo.List(ctx)
				done <- items
			}()

			<-inner.read
			if err := repo.Insert(ctx, subscriber.Subscriber{ID: "x", Name: "Xavier"}); err != nil {
				t.Fatalf("Insert error: %v", err)
			}
			close(inner.release)

			if stale := <-done; len(stale) != 0 {
				t.Fatalf("racing read should have seen the pre-insert list, got %+v", stale)
			}

			list, err := repo.List(ctx)
			if err != nil {
				t.Fatalf("List error: %v", err)
			}
			if len(list) != 1 || list[0].ID != "x" {
				t.Fatalf("list after completed insert = %+v, want [x]", list)
			}
		})
	}
}
