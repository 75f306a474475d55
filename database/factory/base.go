package factory

import "context"

// Factory is implemented by every record factory.
type Factory[T any] interface {
	Make(ctx context.Context) (Result[T], error)
	Create(ctx context.Context) (Result[T], error)
	MakeMany(ctx context.Context, n int) ([]T, error)
	CreateMany(ctx context.Context, n int) ([]T, error)
}

// Result holds the records of one cycle.
type Result[T any] []T

// One returns the first record, or the zero value of an empty result.
func (r Result[T]) One() T {
	var zero T
	if len(r) == 0 {
		return zero
	}
	return r[0]
}

// Many reports whether the cycle produced more than one record.
func (r Result[T]) Many() bool {
	return len(r) > 1
}

// Value returns the bare record for single-record results and the whole
// slice otherwise.
func (r Result[T]) Value() any {
	if len(r) == 1 {
		return r[0]
	}
	return []T(r)
}
