// Package memory provides a process-local TokenStorage for tests and
// ephemeral CLI sessions.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/carelink/internal/client/storage"
)

// Storage keeps the token pair in memory
type Storage struct {
	pair   *storage.TokenPair
	mu     sync.RWMutex
	closed bool
}

var _ storage.TokenStorage = (*Storage)(nil)

// New creates an empty in-memory storage
func New() *Storage {
	return &Storage{}
}

// SaveTokens stores a copy of the pair
func (s *Storage) SaveTokens(ctx context.Context, pair *storage.TokenPair) error {
	if !pair.Complete() {
		return storage.ErrInvalidTokenPair
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}
	cp := *pair
	s.pair = &cp
	return nil
}

// GetTokens returns a copy of the stored pair
func (s *Storage) GetTokens(ctx context.Context) (*storage.TokenPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, storage.ErrStorageClosed
	}
	if s.pair == nil {
		return nil, storage.ErrTokensNotFound
	}
	cp := *s.pair
	return &cp, nil
}

// DeleteTokens drops the pair
func (s *Storage) DeleteTokens(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return storage.ErrStorageClosed
	}
	s.pair = nil
	return nil
}

// Close marks the storage closed
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.pair = nil
	return nil
}
