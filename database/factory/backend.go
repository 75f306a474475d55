package factory

import "context"

// Backend is the storage a factory persists records through.
type Backend[T any] interface {
	Create(ctx context.Context, record T) (T, error)
	InsertMany(ctx context.Context, records []T) ([]T, error)
}

// BackendFuncs adapts plain functions into a Backend.
type BackendFuncs[T any] struct {
	CreateFunc     func(ctx context.Context, record T) (T, error)
	InsertManyFunc func(ctx context.Context, records []T) ([]T, error)
}

var _ Backend[struct{}] = BackendFuncs[struct{}]{}

func (b BackendFuncs[T]) Create(ctx context.Context, record T) (T, error) {
	if b.CreateFunc == nil {
		var zero T
		return zero, ErrUnsupported
	}
	return b.CreateFunc(ctx, record)
}

func (b BackendFuncs[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	if b.InsertManyFunc == nil {
		return nil, ErrUnsupported
	}
	return b.InsertManyFunc(ctx, records)
}
