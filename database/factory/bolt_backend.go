package factory

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

// BoltBackend stores records as JSON values in a bbolt bucket, keyed by the
// bucket's sequence so iteration follows insertion order.
type BoltBackend[T any] struct {
	db     *bbolt.DB
	bucket []byte
}

var _ Backend[struct{}] = (*BoltBackend[struct{}])(nil)

// NewBoltBackend creates the bucket if needed.
func NewBoltBackend[T any](db *bbolt.DB, bucket string) (*BoltBackend[T], error) {
	if bucket == "" {
		bucket = typeName[T]()
	}
	name := []byte(bucket)

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	return &BoltBackend[T]{db: db, bucket: name}, nil
}

func (b *BoltBackend[T]) Create(ctx context.Context, record T) (T, error) {
	if _, err := b.InsertMany(ctx, []T{record}); err != nil {
		var zero T
		return zero, err
	}
	return record, nil
}

// InsertMany stores all records in one transaction; either all land or none.
func (b *BoltBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := b.db.Update(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", b.bucket)
		}

		for _, record := range records {
			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("marshal record: %w", err)
			}

			seq, err := bkt.NextSequence()
			if err != nil {
				return err
			}

			if err := bkt.Put(sequenceKey(seq), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}

// All decodes every stored record in insertion order.
func (b *BoltBackend[T]) All() ([]T, error) {
	var out []T
	err := b.db.View(func(tx *bbolt.Tx) error {
		bkt := tx.Bucket(b.bucket)
		if bkt == nil {
			return fmt.Errorf("bucket not found: %s", b.bucket)
		}
		return bkt.ForEach(func(_, v []byte) error {
			var record T
			if err := json.Unmarshal(v, &record); err != nil {
				return err
			}
			out = append(out, record)
			return nil
		})
	})
	return out, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
