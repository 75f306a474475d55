package factory

import (
	"context"
	"math"
	"sync/atomic"
)

// Definition builds one complete base record. seq increases by one for every
// record a factory produces and is never reset between cycles.
type Definition[T any] func(ctx context.Context, seq int64) (T, error)

// FromBuilder adapts an infallible builder into a Definition.
func FromBuilder[T any](builder func(seq int64) T) Definition[T] {
	return func(_ context.Context, seq int64) (T, error) {
		return builder(seq), nil
	}
}

// Mutation is a normalized mutation rule applied on top of a base record.
type Mutation[T any] func(record T) (T, error)

// State returns a rule that merges a fixed patch into every record.
func State[T any](p Patch) Mutation[T] {
	p = p.clone()
	return func(record T) (T, error) {
		return Apply(record, p)
	}
}

// StateFunc returns a rule that calls fn once per record and merges the result.
func StateFunc[T any](fn func() Patch) Mutation[T] {
	return func(record T) (T, error) {
		return Apply(record, fn())
	}
}

// Mutate returns a rule that edits the record in place.
func Mutate[T any](fn func(*T)) Mutation[T] {
	return func(record T) (T, error) {
		fn(&record)
		return record, nil
	}
}

// Sequence hands out the seq values passed to a Definition.
type Sequence struct {
	n atomic.Int64
}

func (s *Sequence) Next() int64 {
	return s.n.Add(1)
}

func (s *Sequence) Current() int64 {
	return s.n.Load()
}

// Config is the full configuration of one generation cycle.
type Config[T any] struct {
	Quantity  int
	Mutations []Mutation[T]
	Sequence  *Sequence
}

// ValidateQuantity accepts q only when it is a finite integer of at least one
// that fits in an int, the same range SetQuantity accepts.
func ValidateQuantity(q float64) (int, error) {
	if math.IsNaN(q) || math.IsInf(q, 0) || q != math.Trunc(q) || q < 1 || q >= float64(math.MaxInt) {
		return 0, ErrInvalidQuantity
	}
	return int(q), nil
}

// Generate produces cfg.Quantity records: each one is a fresh call to def
// with every mutation folded over it in order. Errors returned by def are
// passed through unchanged.
func Generate[T any](ctx context.Context, def Definition[T], cfg Config[T]) ([]T, error) {
	if cfg.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	seq := cfg.Sequence
	if seq == nil {
		seq = &Sequence{}
	}

	records := make([]T, 0, cfg.Quantity)
	for range cfg.Quantity {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := def(ctx, seq.Next())
		if err != nil {
			return nil, err
		}

		for _, mutate := range cfg.Mutations {
			if record, err = mutate(record); err != nil {
				return nil, err
			}
		}

		records = append(records, record)
	}

	return records, nil
}
