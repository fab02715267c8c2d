package store

import (
	"context"
	"sync"
)

// MemoryStore keeps snapshots in process memory. It is the default driver in
// development and the backend used by service tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Collection][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[Collection][]byte)}
}

func (s *MemoryStore) List(_ context.Context, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneBytes(s.data[c]), nil
}

func (s *MemoryStore) Put(_ context.Context, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[c] = cloneBytes(payload)
	return nil
}

// Update stages writes and publishes them only when fn succeeds.
func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{base: s.data, staged: make(map[Collection][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for c, payload := range tx.staged {
		s.data[c] = payload
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

type memoryTx struct {
	base   map[Collection][]byte
	staged map[Collection][]byte
}

func (t *memoryTx) List(_ context.Context, c Collection) ([]byte, error) {
	if err := validCollection(c); err != nil {
		return nil, err
	}
	if payload, ok := t.staged[c]; ok {
		return cloneBytes(payload), nil
	}
	return cloneBytes(t.base[c]), nil
}

func (t *memoryTx) Put(_ context.Context, c Collection, payload []byte) error {
	if err := validCollection(c); err != nil {
		return err
	}
	t.staged[c] = cloneBytes(payload)
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
