package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/fraudlens/fraudlens/internal/domain"
)

// MemoryStore keeps the collection in memory. Used in tests and for
// ephemeral demo deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*domain.Transaction
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds the record to the front of the collection.
func (s *MemoryStore) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return fmt.Errorf("%w: transaction with id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]*domain.Transaction{tx}, s.records...)
	return nil
}

// LoadAll returns a copy of the collection, newest-first.
func (s *MemoryStore) LoadAll(ctx context.Context) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Transaction, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close clears the collection.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
