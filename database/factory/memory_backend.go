package factory

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps created records in process memory (not persistent)
type MemoryBackend[T any] struct {
	mu      sync.RWMutex
	records []T
}

var _ Backend[struct{}] = (*MemoryBackend[struct{}])(nil)

func NewMemoryBackend[T any]() *MemoryBackend[T] {
	return &MemoryBackend[T]{}
}

func (m *MemoryBackend[T]) Create(ctx context.Context, record T) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return record, nil
}

func (m *MemoryBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, records...)
	return slices.Clone(records), nil
}

// All returns a copy of every stored record in insertion order
func (m *MemoryBackend[T]) All() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return slices.Clone(m.records)
}

func (m *MemoryBackend[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

func (m *MemoryBackend[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = nil
}
