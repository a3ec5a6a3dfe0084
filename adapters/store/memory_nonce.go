package store

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

const (
	// DefaultNonceTTL is how long a nonce stays valid after creation.
	DefaultNonceTTL = 5 * time.Minute

	// DefaultNonceCapacity is the stored-nonce count above which expired
	// entries are pruned before inserting a new one.
	DefaultNonceCapacity = 10_000

	nonceBytes = 32
)

// NonceStore is an in-memory implementation of ports.NonceStore. All
// mutations happen under one mutex so that Consume is linearizable:
// two concurrent consumers of the same value never both succeed.
//
// Nonces do not survive a process restart. Clients just request a new
// challenge, so losing outstanding ones costs one extra round-trip.
type NonceStore struct {
	mu     sync.Mutex
	nonces map[string]time.Time

	ttl      time.Duration
	capacity int
	now      func() time.Time
	random   io.Reader
}

// NonceOption configures a NonceStore.
type NonceOption func(*NonceStore)

// WithNonceTTL sets the TTL used for pruning.
func WithNonceTTL(ttl time.Duration) NonceOption {
	return func(s *NonceStore) { s.ttl = ttl }
}

// WithNonceCapacity sets the prune threshold.
func WithNonceCapacity(n int) NonceOption {
	return func(s *NonceStore) { s.capacity = n }
}

// WithClock replaces the time source. Tests use this to age nonces
// without sleeping.
func WithClock(now func() time.Time) NonceOption {
	return func(s *NonceStore) { s.now = now }
}

// WithRandom replaces the entropy source.
func WithRandom(r io.Reader) NonceOption {
	return func(s *NonceStore) { s.random = r }
}

// NewNonceStore creates a nonce store with the given options. Defaults:
// 5 minute TTL, 10 000 entry prune threshold, crypto/rand, time.Now.
func NewNonceStore(opts ...NonceOption) *NonceStore {
	s := &NonceStore{
		nonces:   make(map[string]time.Time),
		ttl:      DefaultNonceTTL,
		capacity: DefaultNonceCapacity,
		now:      time.Now,
		random:   rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured nonce lifetime.
func (s *NonceStore) TTL() time.Duration {
	return s.ttl
}

// Generate mints a 256-bit random nonce, rendered as 64 lowercase hex
// chars, and records it with the current time.
func (s *NonceStore) Generate() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Opportunistic sweep: drop expired entries once the map grows past
	// the threshold, bounding memory from abandoned challenges without a
	// background scheduler.
	if len(s.nonces) > s.capacity {
		cutoff := s.now().Add(-s.ttl)
		for value, created := range s.nonces {
			if created.Before(cutoff) {
				delete(s.nonces, value)
			}
		}
	}

	s.nonces[nonce] = s.now()
	return nonce, nil
}

// Consume atomically removes value and returns its creation time. The
// removal is unconditional; there is no peek.
func (s *NonceStore) Consume(value string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, ok := s.nonces[value]
	if !ok {
		return time.Time{}, core.ErrNonceNotFound
	}
	delete(s.nonces, value)
	return created, nil
}

// Len reports the number of stored nonces.
func (s *NonceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nonces)
}

var _ ports.NonceStore = (*NonceStore)(nil)
