package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/rangda/ports"
)

// MemoryTokenStore is an in-memory implementation of ports.TokenStore,
// intended for tests and single-instance deployments.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

// NewMemoryTokenStore creates a new in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked: make(map[string]time.Time),
	}
}

// InvalidateToken marks a token as revoked until ttl elapses. A ttl of
// zero keeps the entry forever.
func (s *MemoryTokenStore) InvalidateToken(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	until := time.Time{}
	if ttl > 0 {
		until = time.Now().Add(ttl)
	}
	s.revoked[token] = until
	return nil
}

// IsTokenInvalidated reports whether a token has been revoked.
func (s *MemoryTokenStore) IsTokenInvalidated(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, ok := s.revoked[token]
	if !ok {
		return false, nil
	}
	if !until.IsZero() && time.Now().After(until) {
		return false, nil
	}
	return true, nil
}

var _ ports.TokenStore = (*MemoryTokenStore)(nil)
