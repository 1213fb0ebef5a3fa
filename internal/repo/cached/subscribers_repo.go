// Package cached wraps a subscriber repository with a read-through cache.
// Cache trouble is logged and otherwise ignored; the wrapped repository stays
// the source of truth.
package cached

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/geocoder89/subscriberhub/internal/cache"
	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
	"github.com/geocoder89/subscriberhub/internal/observability"
	"github.com/geocoder89/subscriberhub/internal/service"
)

const (
	listGenKey    = "subscribers:list:gen"
	listKeyPrefix = "subscribers:list:v2:"
	getKeyPrefix  = "subscribers:get:v1:"
)

// listKey is scoped to the insert generation: a list read that started
// before an insert can only ever fill a key no later reader looks up.
func listKey(gen int64) string {
	return listKeyPrefix + strconv.FormatInt(gen, 10)
}

func getKey(id string) string {
	return getKeyPrefix + id
}

type SubscribersRepo struct {
	next  service.SubscriberRepository
	store cache.Store
	log   *slog.Logger
	prom  *observability.Prom
}

type Option func(*SubscribersRepo)

// WithProm counts hits, misses and cache errors per op.
func WithProm(p *observability.Prom) Option {
	return func(r *SubscribersRepo) {
		r.prom = p
	}
}

func NewSubscribersRepo(next service.SubscriberRepository, store cache.Store, log *slog.Logger, opts ...Option) *SubscribersRepo {
	if log == nil {
		log = slog.Default()
	}

	r := &SubscribersRepo{next: next, store: store, log: log}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *SubscribersRepo) List(ctx context.Context) ([]subscriber.Summary, error) {
	gen, err := r.store.Generation(ctx, listGenKey)
	if err != nil {
		r.observe("list", "error")
		r.log.WarnContext(ctx, "cache generation read failed", "key", listGenKey, "err", err)
		return r.next.List(ctx)
	}

	key := listKey(gen)

	var items []subscriber.Summary
	if r.lookup(ctx, "list", key, &items) {
		return items, nil
	}

	items, err = r.next.List(ctx)
	if err != nil {
		return nil, err
	}

	r.fill(ctx, key, items)

	return items, nil
}

// GetByID only caches hits, so a later insert with the same id is never
// shadowed by a cached miss.
func (r *SubscribersRepo) GetByID(ctx context.Context, id string) (subscriber.Summary, error) {
	var s subscriber.Summary
	if r.lookup(ctx, "get", getKey(id), &s) {
		return s, nil
	}

	s, err := r.next.GetByID(ctx, id)
	if err != nil {
		return subscriber.Summary{}, err
	}

	r.fill(ctx, getKey(id), s)

	return s, nil
}

func (r *SubscribersRepo) Insert(ctx context.Context, s subscriber.Subscriber) error {
	if err := r.next.Insert(ctx, s); err != nil {
		return err
	}

	if _, err := r.store.Bump(ctx, listGenKey); err != nil {
		r.log.WarnContext(ctx, "cache invalidate failed", "key", listGenKey, "err", err)
	}

	return nil
}

// Ping forwards readiness checks to the wrapped repository when it has one.
func (r *SubscribersRepo) Ping(ctx context.Context) error {
	p, ok := r.next.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}

func (r *SubscribersRepo) lookup(ctx context.Context, op, key string, out any) bool {
	b, ok, err := r.store.Get(ctx, key)
	if err != nil {
		r.observe(op, "error")
		r.log.WarnContext(ctx, "cache read failed", "key", key, "err", err)
		return false
	}
	if !ok {
		r.observe(op, "miss")
		return false
	}

	if err := json.Unmarshal(b, out); err != nil {
		r.observe(op, "error")
		r.log.WarnContext(ctx, "cache entry undecodable", "key", key, "err", err)
		return false
	}

	r.observe(op, "hit")
	return true
}

func (r *SubscribersRepo) observe(op, result string) {
	if r.prom != nil {
		r.prom.ObserveCache(op, result)
	}
}

func (r *SubscribersRepo) fill(ctx context.Context, key string, val any) {
	b, err := json.Marshal(val)
	if err != nil {
		return
	}

	if err := r.store.Set(ctx, key, b); err != nil {
		r.log.WarnContext(ctx, "cache write failed", "key", key, "err", err)
	}
}
