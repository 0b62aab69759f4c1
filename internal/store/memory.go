package store

import (
	"log/slog"
	"sync"
)

// MemoryStore keeps the whole store in a map. Nothing survives a restart.
// A RWMutex guards the map since request handlers call in concurrently.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Value
}

var _ Backend = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Value),
	}
}

func (s *MemoryStore) Create(key string, value Value, txnID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.data[key]; ok {
		slog.Info("Key conflict in create operation",
			"txn_id", txnID,
			"key", key,
			"old_value", existing,
			"new_value", value)
		return &KeyConflictError{Key: key, Existing: existing, Attempted: value}
	}
	s.data[key] = value
	return nil
}

func (s *MemoryStore) Replace(key string, value Value, txnID string) (Value, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data[key]
	if !ok {
		slog.Info("Replace operation on key that did not exist",
			"txn_id", txnID,
			"key", key,
			"value", value)
	}
	s.data[key] = value
	return prev, ok, nil
}

func (s *MemoryStore) Delete(key string, txnID string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	delete(s.data, key)
	return v, nil
}

func (s *MemoryStore) Get(key string, txnID string) (Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return Value{}, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

func (s *MemoryStore) Close() error { return nil }
