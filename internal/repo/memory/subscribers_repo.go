package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/subscriberhub/internal/domain/subscriber"
)

// SubscribersRepo keeps subscribers in insertion order. Used for tests and
// STORAGE_DRIVER=memory.
type SubscribersRepo struct {
	mu    sync.RWMutex
	order []string
	items map[string]subscriber.Subscriber
}

func NewSubscribersRepo() *SubscribersRepo {
	return &SubscribersRepo{
		items: make(map[string]subscriber.Subscriber),
	}
}

func (r *SubscribersRepo) List(_ context.Context) ([]subscriber.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]subscriber.Summary, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Summary())
	}

	return out, nil
}

func (r *SubscribersRepo) GetByID(_ context.Context, id string) (subscriber.Summary, error) {
	r.mu.RLock()
	s, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return subscriber.Summary{}, subscriber.ErrNotFound
	}

	return s.Summary(), nil
}

func (r *SubscribersRepo) Insert(_ context.Context, s subscriber.Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.ID]; exists {
		return subscriber.RepositoryFailure("insert", errDuplicateID)
	}

	r.items[s.ID] = s
	r.order = append(r.order, s.ID)

	return nil
}

// Get returns the full stored record, including the hash. Not part of the
// service contract; tests use it to inspect what was persisted.
func (r *SubscribersRepo) Get(id string) (subscriber.Subscriber, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[id]
	return s, ok
}

// Ping satisfies the readiness check.
func (r *SubscribersRepo) Ping(_ context.Context) error {
	return nil
}
