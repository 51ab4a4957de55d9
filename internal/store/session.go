package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"ventas/internal/storage"
)

// SessionStore holds the active operator's display name. No password or
// identity verification is attached to it; the routing layer only asks
// whether a name exists. The value persists as a plain string.
type SessionStore struct {
	mu     sync.RWMutex
	kv     storage.KV
	logger *slog.Logger
	name   string
}

func NewSessionStore(ctx context.Context, kv storage.KV, logger *slog.Logger) *SessionStore {
	s := &SessionStore{kv: kv, logger: logger.With("store", KeyDisplayName)}
	s.cleanupLegacyKeys(ctx)
	s.load(ctx)
	return s
}

// cleanupLegacyKeys removes the storage of the superseded login model.
func (s *SessionStore) cleanupLegacyKeys(ctx context.Context) {
	for _, key := range []string{KeyLegacySessionUser, KeyLegacyUsers, KeyLegacyPasswords} {
		if err := s.kv.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to remove legacy session key", "key", key, "error", err)
		}
	}
}

func (s *SessionStore) load(ctx context.Context) {
	raw, err := s.kv.Get(ctx, KeyDisplayName)
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			s.logger.Error("Failed to load display name", "error", err)
		}
		return
	}
	s.mu.Lock()
	s.name = strings.TrimSpace(string(raw))
	s.mu.Unlock()
}

// DisplayName returns the current display name and whether one is set.
func (s *SessionStore) DisplayName() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name, s.name != ""
}

// HasDisplayName is the predicate the routing layer gates screens on.
func (s *SessionStore) HasDisplayName() bool {
	_, ok := s.DisplayName()
	return ok
}

// SetDisplayName stores the trimmed name and persists it. A persistence
// failure is logged; the in-memory value still changes.
func (s *SessionStore) SetDisplayName(ctx context.Context, name string) {
	trimmed := strings.TrimSpace(name)

	s.mu.Lock()
	s.name = trimmed
	s.mu.Unlock()

	if err := s.kv.Put(ctx, KeyDisplayName, []byte(trimmed)); err != nil {
		s.logger.Error("Failed to persist display name", "error", err)
	}
}

// Clear removes the display name, in memory and from storage.
func (s *SessionStore) Clear(ctx context.Context) {
	s.mu.Lock()
	s.name = ""
	s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyDisplayName); err != nil {
		s.logger.Error("Failed to clear display name", "error", err)
	}
}
