package store

import (
	"context"
	"sync"

	"vouch/internal/credential/models"
)

// MemoryStore is an in-memory implementation of Store for tests or local use.
// It is safe for concurrent access but does not persist across process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Record
}

// NewMemory constructs an empty in-memory credential store.
func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.Record)}
}

// Save inserts a new record, refusing duplicates. The check and insert happen
// under one write lock, mirroring the atomic insert-or-fail of the durable
// backends.
func (s *MemoryStore) Save(_ context.Context, record models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; ok {
		return ErrConflict
	}
	s.records[record.ID] = record
	return nil
}

// Exists reports whether a record with the given ID is present.
func (s *MemoryStore) Exists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

// Get retrieves a record by ID or returns ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if record, ok := s.records[id]; ok {
		return record, nil
	}
	return models.Record{}, ErrNotFound
}

// ListIDs returns all stored credential IDs.
func (s *MemoryStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	return ids, nil
}

// Health always succeeds for the in-memory store.
func (s *MemoryStore) Health(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
