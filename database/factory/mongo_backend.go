package factory

import (
	"context"
	"fmt"
	"reflect"
	"slices"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoBackend inserts records as documents into a MongoDB collection.
// Records come back with the inserted _id set, see withInsertedID.
type MongoBackend[T any] struct {
	coll *mongo.Collection
}

var _ Backend[struct{}] = (*MongoBackend[struct{}])(nil)

func NewMongoBackend[T any](coll *mongo.Collection) *MongoBackend[T] {
	return &MongoBackend[T]{coll: coll}
}

func (m *MongoBackend[T]) Collection() *mongo.Collection {
	return m.coll
}

func (m *MongoBackend[T]) Create(ctx context.Context, record T) (T, error) {
	res, err := m.coll.InsertOne(ctx, record)
	if err != nil {
		var zero T
		return zero, err
	}
	return withInsertedID(record, res.InsertedID)
}

// InsertMany inserts records in order; MongoDB stops at the first failure.
func (m *MongoBackend[T]) InsertMany(ctx context.Context, records []T) ([]T, error) {
	docs := make([]any, len(records))
	for i, r := range records {
		docs[i] = r
	}

	res, err := m.coll.InsertMany(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := slices.Clone(records)
	for i := range out {
		if i >= len(res.InsertedIDs) {
			break
		}
		if out[i], err = withInsertedID(out[i], res.InsertedIDs[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// withInsertedID stores id in the record's `bson:"_id"` field, or under the
// "_id" key of a map record. Fields and keys that already hold a value are
// left alone. An ObjectID is stored as its hex form in string fields.
func withInsertedID[T any](record T, id any) (T, error) {
	if id == nil {
		return record, nil
	}

	v := reflect.ValueOf(&record).Elem()
	switch v.Kind() {
	case reflect.Struct:
		return record, setStructID(v, id)
	case reflect.Pointer:
		if v.IsNil() || v.Elem().Kind() != reflect.Struct {
			return record, nil
		}
		return record, setStructID(v.Elem(), id)
	case reflect.Map:
		keyType := v.Type().Key()
		if keyType.Kind() != reflect.String {
			return record, nil
		}
		if existing := v.MapIndex(reflect.ValueOf("_id").Convert(keyType)); existing.IsValid() && !existing.IsZero() {
			return record, nil
		}
		return Apply(record, Patch{"_id": insertedIDFor(id, v.Type().Elem())})
	default:
		return record, nil
	}
}

func setStructID(v reflect.Value, id any) error {
	path := indexFor(v.Type()).bsonID
	if path == nil {
		return nil
	}

	field := fieldByIndex(v, path)
	if !field.IsZero() {
		return nil
	}

	val, err := coerce("_id", insertedIDFor(id, field.Type()), field.Type())
	if err != nil {
		return fmt.Errorf("mongo: store inserted id: %w", err)
	}
	field.Set(val)
	return nil
}

func insertedIDFor(id any, t reflect.Type) any {
	oid, ok := id.(primitive.ObjectID)
	if !ok {
		return id
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.String {
		return oid.Hex()
	}
	return id
}
