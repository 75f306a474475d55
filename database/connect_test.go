package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.etcd.io/bbolt"
	"gorm.io/gorm/logger"

	"github.com/galaplate/fixture/config"
)

type widget struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	CreatedAt time.Time
}

func sqliteManager(t *testing.T) *config.Manager {
	t.Helper()

	m := config.NewManager()
	m.Set("database.default", "sqlite")
	m.Set("database.connections.sqlite.database", filepath.Join(t.TempDir(), "test.sqlite"))
	return m
}

func TestSQLiteConnection(t *testing.T) {
	db, err := Open(sqliteManager(t), nil)
	if err != nil {
		t.Fatalf("Failed to connect to SQLite: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := db.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("Failed to migrate widget model: %v", err)
	}

	w := widget{Name: "sprocket"}
	if err := db.Create(&w).Error; err != nil {
		t.Fatalf("Failed to create widget: %v", err)
	}

	var got widget
	if err := db.First(&got, w.ID).Error; err != nil {
		t.Fatalf("Failed to retrieve widget: %v", err)
	}
	if got.Name != "sprocket" {
		t.Errorf("Expected name 'sprocket', got '%s'", got.Name)
	}
}

func TestConnectWithConfigSetsGlobal(t *testing.T) {
	previousCfg, previousConn := config.GetGlobal(), Connect
	t.Cleanup(func() {
		config.SetGlobal(previousCfg)
		Connect = previousConn
	})

	config.SetGlobal(sqliteManager(t))
	if err := New(); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if Connect == nil {
		t.Fatal("expected Connect to be set")
	}
	sqlDB, _ := Connect.DB()
	sqlDB.Close()
}

func TestDialector(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		driver   string
		wantName string
		wantErr  bool
	}{
		{name: "sqlite", conn: "sqlite", wantName: "sqlite"},
		{name: "mysql", conn: "mysql", wantName: "mysql"},
		{name: "postgres alias", conn: "pgsql", wantName: "postgres"},
		{name: "driver override", conn: "reporting", driver: "postgresql", wantName: "postgres"},
		{name: "missing default", conn: "", wantErr: true},
		{name: "unknown", conn: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := config.NewManager()
			m.Set("database.connections."+MapPostgres(tt.conn)+".host", "localhost")
			if tt.driver != "" {
				m.Set("database.connections."+tt.conn+".driver", tt.driver)
			}

			d, err := Dialector(m, tt.conn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got dialector %s", d.Name())
				}
				return
			}
			if err != nil {
				t.Fatalf("Dialector() error = %v", err)
			}
			if d.Name() != tt.wantName {
				t.Errorf("Dialector().Name() = %s, want %s", d.Name(), tt.wantName)
			}
		})
	}
}

func TestParseGormLogLevel(t *testing.T) {
	cases := map[string]logger.LogLevel{
		"silent":  logger.Silent,
		"ERROR":   logger.Error,
		"warn":    logger.Warn,
		"info":    logger.Info,
		"verbose": logger.Warn,
	}
	for in, want := range cases {
		if got := ParseGormLogLevel(in); got != want {
			t.Errorf("ParseGormLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenBoltCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "fixtures.bolt")

	db, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected bolt file at %s: %v", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte("widgets"))
		return err
	})
	if err != nil {
		t.Fatalf("write to bolt db: %v", err)
	}
}

func TestConnectMongoFailsFast(t *testing.T) {
	if os.Getenv("MONGO_URI") != "" {
		t.Skip("a MongoDB server is configured")
	}

	ctx := context.Background()
	_, err := ConnectMongo(ctx, "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200", 500*time.Millisecond)
	if err == nil {
		t.Fatal("expected an error connecting to a closed port")
	}
}
