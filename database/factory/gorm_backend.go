package factory

import (
	"context"
	"slices"

	"gorm.io/gorm"
)

const DefaultBatchSize = 100

// GormBackend persists struct records through gorm. T must be a model
// struct (not a pointer) so gorm can fill primary keys and timestamps.
type GormBackend[T any] struct {
	db        *gorm.DB
	batchSize int
}

var _ Backend[struct{}] = (*GormBackend[struct{}])(nil)

type GormOption func(*gormOptions)

type gormOptions struct {
	batchSize int
}

// WithBatchSize sets how many rows InsertMany sends per statement.
func WithBatchSize(n int) GormOption {
	return func(o *gormOptions) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

func NewGormBackend[T any](db *gorm.DB, opts ...GormOption) *GormBackend[T] {
	o := gormOptions{batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(&o)
	}
	return &GormBackend[T]{db: db, batchSize: o.batchSize}
}

func (g *GormBackend[T]) DB() *gorm.DB {
	return g.db
}

func (g *GormBackend[T]) Create(ctx context.Context, record T) (T, error) {
	if g.db == nil {
		var zero T
		return zero, gorm.ErrInvalidDB
	}
	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// InsertMany writes records in batches inside a single transaction.
func (g *GormBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	if g.db == nil {
		return nil, gorm.ErrInvalidDB
	}

	out := slices.Clone(records)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&out, g.batchSize).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
