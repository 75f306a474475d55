package testing

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/galaplate/fixture/database"
	"github.com/galaplate/fixture/env"
)

type TestConfig struct {
	EnvFile         string
	Models          []any
	RefreshDatabase bool
	// DatabasePath keeps one sqlite file across tests. Empty means a fresh
	// temporary database for every test.
	DatabasePath    string
	CustomBootstrap func(*TestCase)
	GormConfig      *gorm.Config
}

type TestCase struct {
	suite.Suite
	DB                *gorm.DB
	Config            *TestConfig
	refreshDatabase   bool
	databaseRefreshed bool
	previous          *gorm.DB
}

func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		EnvFile:         ".env.testing",
		RefreshDatabase: false,
	}
}

func NewTestCase(opts ...func(*TestConfig)) *TestCase {
	cfg := DefaultTestConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	return &TestCase{
		Config:          cfg,
		refreshDatabase: cfg.RefreshDatabase,
	}
}

func (tc *TestCase) SetupTest() {
	if tc.Config == nil {
		tc.Config = DefaultTestConfig()
	}
	if tc.Config.RefreshDatabase {
		tc.refreshDatabase = true
	}

	tc.loadEnvironment()
	tc.openDatabase()
	tc.migrate()
	tc.handleDatabaseRefresh()

	if tc.Config.CustomBootstrap != nil {
		tc.Config.CustomBootstrap(tc)
	}
}

func (tc *TestCase) loadEnvironment() {
	if tc.Config.EnvFile != "" {
		if err := env.Load(tc.Config.EnvFile); err != nil {
			log.Printf("Warning: Error loading env file %s: %v", tc.Config.EnvFile, err)
		}
	}

	os.Setenv("APP_ENV", "testing")
}

func (tc *TestCase) openDatabase() {
	path := tc.Config.DatabasePath
	if path == "" {
		path = filepath.Join(tc.T().TempDir(), "test.sqlite")
	}

	gormConfig := tc.Config.GormConfig
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
	}

	db, err := gorm.Open(sqlite.Open(path), gormConfig)
	tc.Require().NoError(err, "open test database")

	tc.DB = db
	tc.previous = database.Connect
	database.Connect = db
}

func (tc *TestCase) migrate() {
	if len(tc.Config.Models) == 0 {
		return
	}
	tc.Require().NoError(tc.DB.AutoMigrate(tc.Config.Models...), "migrate test models")
}

func (tc *TestCase) handleDatabaseRefresh() {
	if tc.refreshDatabase && !tc.databaseRefreshed {
		if err := tc.RefreshDatabase(); err != nil {
			log.Printf("Warning: Failed to refresh database: %v", err)
			log.Printf("Continuing with existing database state...")
		} else {
			tc.databaseRefreshed = true
		}
	}
}

func (tc *TestCase) EnableRefreshDatabase() {
	tc.refreshDatabase = true
}

// RefreshDatabase drops and re-creates the tables of every configured model.
func (tc *TestCase) RefreshDatabase() error {
	db := tc.GetDB()
	if db == nil {
		return fmt.Errorf("no test database")
	}
	if len(tc.Config.Models) == 0 {
		return nil
	}

	if err := db.Migrator().DropTable(tc.Config.Models...); err != nil {
		return err
	}
	return db.AutoMigrate(tc.Config.Models...)
}

func (tc *TestCase) RefreshDatabaseBetweenTests() {
	tc.databaseRefreshed = false
}

func (tc *TestCase) TearDownTest() {
	if tc.DB != nil {
		sqlDB, err := tc.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	database.Connect = tc.previous
	tc.DB = nil
}

func (tc *TestCase) GetDB() *gorm.DB {
	if tc.DB == nil {
		tc.DB = database.Connect
	}
	return tc.DB
}
