package statestore

import (
	"context"
	"strings"
	"sync"
)

// MemoryBackend keeps the whole key space in a map. Used in tests and for
// dev mode without a database. Apply holds the lock for the whole batch, so
// a reader never observes a half-applied operation.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	cp := make([]byte, len(raw))
	copy(cp, raw)
	return cp, true, nil
}

func (m *MemoryBackend) List(_ context.Context, prefix string) (map[string][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string][]byte)
	for key, raw := range m.data {
		if strings.HasPrefix(key, prefix) {
			cp := make([]byte, len(raw))
			copy(cp, raw)
			out[key] = cp
		}
	}
	return out, nil
}

func (m *MemoryBackend) Apply(_ context.Context, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mut := range batch.mutations {
		if mut.value == nil {
			delete(m.data, mut.key)
			continue
		}
		m.data[mut.key] = mut.value
	}
	return nil
}
