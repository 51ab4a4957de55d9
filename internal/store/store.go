// Package store implements the entity stores. Each store owns one ordered
// list of records, mirrors it to the durable key-value store on every
// mutation and exposes a read-only view plus change notification.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"ventas/internal/storage"
)

// Storage keys, one logical record per key.
const (
	KeyClients     = "clients"
	KeyProducts    = "products"
	KeyOrders      = "orders"
	KeyDisplayName = "display_name"

	// Keys of the superseded login-based identity model. Removed on load.
	KeyLegacySessionUser = "session_user"
	KeyLegacyUsers       = "users"
	KeyLegacyPasswords   = "passwords"
)

// listStore is the persisted-list core shared by the entity stores. Mutations
// are applied in memory first and then snapshotted as a JSON array to the KV
// layer; a failed write is logged and the in-memory state stays authoritative.
type listStore[T any] struct {
	mu      sync.RWMutex
	key     string
	kv      storage.KV
	logger  *slog.Logger
	items   []T
	subs    map[int]func()
	nextSub int
}

func newListStore[T any](kv storage.KV, key string, logger *slog.Logger) *listStore[T] {
	return &listStore[T]{
		key:    key,
		kv:     kv,
		logger: logger.With("store", key),
		subs:   make(map[int]func()),
	}
}

// load replaces the list with the persisted state. Returns false when there is
// no usable persisted data (missing key, unreadable storage, invalid JSON) so
// the caller can fall back to its default.
func (s *listStore[T]) load(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Error("Failed to load persisted list", "error", err)
		}
		return false
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		s.logger.Error("Failed to decode persisted list", "error", err)
		return false
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return true
}

// List returns a copy of the list in insertion order.
func (s *listStore[T]) List() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the current number of records.
func (s *listStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// find returns the first record matching the predicate.
func (s *listStore[T]) find(match func(T) bool) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// append adds a record to the end of the list and persists.
func (s *listStore[T]) append(ctx context.Context, item T) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
}

// removeBy deletes all records matching the predicate, keeping the relative
// order of the rest. Removing nothing is a silent no-op.
func (s *listStore[T]) removeBy(ctx context.Context, match func(T) bool) {
	s.mu.Lock()
	kept := make([]T, 0, len(s.items))
	for _, item := range s.items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	changed := len(kept) != len(s.items)
	if changed {
		s.items = kept
		s.persistLocked(ctx)
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// replaceAll swaps the whole list and persists. Used for seeding.
func (s *listStore[T]) replaceAll(ctx context.Context, items []T) {
	s.mu.Lock()
	s.items = items
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.notify()
}

// persistLocked snapshots the full list to the KV layer. Must be called with
// the mutex held. Failures are logged, never propagated: memory remains the
// source of truth until the next successful write.
func (s *listStore[T]) persistLocked(ctx context.Context) {
	raw, err := json.Marshal(s.items)
	if err != nil {
		s.logger.Error("Failed to encode list for persistence", "error", err)
		return
	}
	if err := s.kv.Put(ctx, s.key, raw); err != nil {
		s.logger.Error("Failed to persist list", "error", err)
	}
}

// Subscribe registers a change listener invoked after every committed
// mutation. The returned function cancels the subscription.
func (s *listStore[T]) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *listStore[T]) notify() {
	s.mu.RLock()
	listeners := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn()
	}
}
