package factory

import (
	"context"
	"fmt"

	"github.com/galaplate/fixture/config"
	"github.com/galaplate/fixture/database"
	fsconfig "github.com/galaplate/fixture/file-storage/config"
	"github.com/galaplate/fixture/file-storage/registry"
)

// Backend names accepted by factory.backend.
const (
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendBolt     = "bolt"
	BackendMongo    = "mongo"
	BackendSnapshot = "snapshot"
)

// OpenBackend builds the backend named by factory.backend. collection names
// the bbolt bucket, mongo collection or snapshot prefix and defaults to T's
// type name. The returned close func releases the underlying connection.
func OpenBackend[T any](ctx context.Context, m *config.Manager, collection string) (Backend[T], func() error, error) {
	if collection == "" {
		collection = typeName[T]()
	}

	backend, closeFn, err := openBackend[T](ctx, m, collection)
	if err != nil {
		return nil, nil, err
	}

	if m.GetBool("factory.validate") {
		backend = NewValidatingBackend(backend)
	}
	return backend, closeFn, nil
}

func openBackend[T any](ctx context.Context, m *config.Manager, collection string) (Backend[T], func() error, error) {
	noop := func() error { return nil }

	switch kind := m.GetStringDefault("factory.backend", BackendMemory); kind {
	case BackendMemory:
		return NewMemoryBackend[T](), noop, nil

	case BackendDatabase, "gorm":
		db, err := database.Open(m, nil)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return NewGormBackend[T](db, WithBatchSize(m.GetInt("factory.batch_size"))), sqlDB.Close, nil

	case BackendBolt:
		db, err := database.OpenBolt(m.GetString("bolt.path"))
		if err != nil {
			return nil, nil, err
		}
		b, err := NewBoltBackend[T](db, collection)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return b, db.Close, nil

	case BackendMongo:
		client, err := database.ConnectMongo(ctx, m.GetString("mongo.uri"), m.GetDuration("mongo.timeout"))
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(m.GetStringDefault("mongo.database", "fixtures")).Collection(collection)
		return NewMongoBackend[T](coll), func() error { return client.Disconnect(context.Background()) }, nil

	case BackendSnapshot:
		fsCfg, err := fsconfig.Load(m)
		if err != nil {
			return nil, nil, err
		}
		reg, err := registry.FromConfig(fsCfg)
		if err != nil {
			return nil, nil, err
		}
		disk := m.GetStringDefault("factory.snapshot.disk", fsCfg.Default)
		provider, err := reg.GetProvider(disk)
		if err != nil {
			return nil, nil, err
		}
		return NewSnapshotBackend[T](provider, collection), noop, nil

	default:
		return nil, nil, fmt.Errorf("unsupported factory backend: %s", kind)
	}
}
