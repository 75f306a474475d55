package factory

import (
	"context"
	"fmt"
	"reflect"

	"github.com/galaplate/fixture/supports"
)

// ValidatingBackend checks every record's `validate` tags before handing the
// records to the wrapped backend. Nothing is persisted if any record fails.
// Records that are not structs or struct pointers, such as map records, pass
// through unchecked.
type ValidatingBackend[T any] struct {
	next      Backend[T]
	validator supports.XValidator
}

var _ Backend[struct{}] = (*ValidatingBackend[struct{}])(nil)

func NewValidatingBackend[T any](next Backend[T]) *ValidatingBackend[T] {
	return &ValidatingBackend[T]{next: next}
}

func (v *ValidatingBackend[T]) Create(ctx context.Context, record T) (T, error) {
	if err := v.validate(record); err != nil {
		var zero T
		return zero, err
	}
	return v.next.Create(ctx, record)
}

func (v *ValidatingBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	for i, record := range records {
		if err := v.validate(record); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return v.next.InsertMany(ctx, records)
}

func (v *ValidatingBackend[T]) validate(record T) error {
	t := reflect.TypeOf(record)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	return v.validator.Validate(record)
}
