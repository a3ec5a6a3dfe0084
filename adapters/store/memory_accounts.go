package store

import (
	"context"
	"sync"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/ports"
)

// MemoryAccountStore is an in-memory implementation of ports.AccountStore
// for tests.
type MemoryAccountStore struct {
	mu      sync.RWMutex
	users   map[string]*memUser
	byToken map[string]memDeviceRef
}

type memUser struct {
	passwordHash string
	displayName  string
	devices      map[string]string // device id -> token
}

type memDeviceRef struct {
	userID   string
	deviceID string
}

// NewMemoryAccountStore creates a new in-memory account store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		users:   make(map[string]*memUser),
		byToken: make(map[string]memDeviceRef),
	}
}

func (s *MemoryAccountStore) UserExists(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *MemoryAccountStore) CreateUser(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = &memUser{
		passwordHash: passwordHash,
		devices:      make(map[string]string),
	}
	return nil
}

func (s *MemoryAccountStore) PasswordHash(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return "", core.ErrUserNotFound
	}
	return u.passwordHash, nil
}

func (s *MemoryAccountStore) SetDisplayName(ctx context.Context, userID, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.displayName = displayName
	}
	return nil
}

// DisplayName returns the stored display name; test helper.
func (s *MemoryAccountStore) DisplayName(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[userID]; ok {
		return u.displayName
	}
	return ""
}

func (s *MemoryAccountStore) DeviceExists(ctx context.Context, userID, deviceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return false, nil
	}
	_, ok = u.devices[deviceID]
	return ok, nil
}

func (s *MemoryAccountStore) CreateDevice(ctx context.Context, userID, deviceID, token, displayName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	u.devices[deviceID] = token
	s.byToken[token] = memDeviceRef{userID: userID, deviceID: deviceID}
	return nil
}

func (s *MemoryAccountStore) SetDeviceToken(ctx context.Context, userID, deviceID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return core.ErrUserNotFound
	}
	if old, ok := u.devices[deviceID]; ok {
		delete(s.byToken, old)
	}
	u.devices[deviceID] = token
	s.byToken[token] = memDeviceRef{userID: userID, deviceID: deviceID}
	return nil
}

func (s *MemoryAccountStore) UserByToken(ctx context.Context, token string) (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.byToken[token]
	if !ok {
		return "", "", core.ErrInvalidToken
	}
	return ref.userID, ref.deviceID, nil
}

func (s *MemoryAccountStore) RemoveDevice(ctx context.Context, userID, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	if token, ok := u.devices[deviceID]; ok {
		delete(s.byToken, token)
		delete(u.devices, deviceID)
	}
	return nil
}

func (s *MemoryAccountStore) DeviceIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	ids := make([]string, 0, len(u.devices))
	for id := range u.devices {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryAccountStore) Close() error { return nil }

var _ ports.AccountStore = (*MemoryAccountStore)(nil)
