package services

import (
	"context"
	"sort"
	"sync"

	"tournament-dashboard/repository"
)

// memRepo is an in-memory repository.Repository. column reads the value a
// filter column is compared against.
type memRepo[T any] struct {
	mu     sync.Mutex
	items  map[string]T
	idOf   func(*T) string
	column func(*T, string) interface{}

	preloads []repository.Preload
	updates  []map[string]interface{}
}

func newMemRepo[T any](idOf func(*T) string, column func(*T, string) interface{}, items ...T) *memRepo[T] {
	r := &memRepo[T]{items: map[string]T{}, idOf: idOf, column: column}
	for i := range items {
		r.items[idOf(&items[i])] = items[i]
	}
	return r
}

func (r *memRepo[T]) Create(ctx context.Context, entity *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.idOf(entity)] = *entity
	return nil
}

func (r *memRepo[T]) Get(ctx context.Context, id string, preloads ...repository.Preload) (*T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preloads = preloads
	item, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *memRepo[T]) matches(item *T, filters map[string]interface{}) bool {
	for col, want := range filters {
		if r.column(item, col) != want {
			return false
		}
	}
	return true
}

// List ignores Order and returns items sorted by id.
func (r *memRepo[T]) List(ctx context.Context, q repository.Query) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []T{}
	for _, item := range r.items {
		item := item
		if r.matches(&item, q.Filters) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.idOf(&out[i]) < r.idOf(&out[j]) })
	return out, nil
}

func (r *memRepo[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, fields)
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *memRepo[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *memRepo[T]) Count(ctx context.Context, filters map[string]interface{}) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		item := item
		if r.matches(&item, filters) {
			n++
		}
	}
	return n, nil
}
