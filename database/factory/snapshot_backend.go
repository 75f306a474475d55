package factory

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	filestorage "github.com/galaplate/fixture/file-storage"
)

// SnapshotBackend writes records as JSON fixture files to a storage provider.
// Create writes one object holding the record, InsertMany one object holding
// the array.
type SnapshotBackend[T any] struct {
	provider filestorage.Provider
	prefix   string

	mu      sync.Mutex
	objects []filestorage.Object
}

var _ Backend[struct{}] = (*SnapshotBackend[struct{}])(nil)

func NewSnapshotBackend[T any](provider filestorage.Provider, prefix string) *SnapshotBackend[T] {
	if prefix == "" {
		prefix = typeName[T]()
	}
	return &SnapshotBackend[T]{provider: provider, prefix: prefix}
}

func (s *SnapshotBackend[T]) Create(ctx context.Context, record T) (T, error) {
	if _, err := s.put(ctx, record); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

func (s *SnapshotBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	if _, err := s.put(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Objects lists the files written so far, oldest first.
func (s *SnapshotBackend[T]) Objects() []filestorage.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.objects)
}

func (s *SnapshotBackend[T]) put(ctx context.Context, v any) (filestorage.Object, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return filestorage.Object{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	key := path.Join(s.prefix, fmt.Sprintf("%s_%s.json", time.Now().Format("20060102150405"), uuid.New().String()))
	obj, err := s.provider.Put(ctx, key, data, "application/json")
	if err != nil {
		return filestorage.Object{}, err
	}

	s.mu.Lock()
	s.objects = append(s.objects, obj)
	s.mu.Unlock()
	return obj, nil
}
