package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/galaplate/fixture/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect is the default connection used by NewBaseFactory and the console
var Connect *gorm.DB

type Config struct {
	GormConfig *gorm.Config
}

type OptFunc func(*Config)

// WithGormConfig replaces the gorm configuration
func WithGormConfig(gc *gorm.Config) OptFunc {
	return func(c *Config) { c.GormConfig = gc }
}

// New connects the default database using the global configuration
func New(opts ...OptFunc) error {
	cfg := DefaultGormConfig()

	// Apply all provided options
	for _, opt := range opts {
		opt(cfg)
	}

	return ConnectWithConfig(cfg)
}

// DefaultGormConfig returns default GORM configuration
func DefaultGormConfig() *Config {
	return &Config{
		GormConfig: &gorm.Config{
			Logger: logger.New(
				log.New(os.Stdout, "\r\n", log.LstdFlags),
				logger.Config{
					SlowThreshold:             time.Second,
					LogLevel:                  ParseGormLogLevel(config.ConfigString("database.log_level")),
					IgnoreRecordNotFoundError: true,
					ParameterizedQueries:      true,
					Colorful:                  true,
				},
			),
			DisableForeignKeyConstraintWhenMigrating: true,
		},
	}
}

// ParseGormLogLevel maps silent/error/warn/info to gorm levels; anything else is warn
func ParseGormLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// ConnectWithConfig opens the connection named by database.default and stores it in Connect
func ConnectWithConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultGormConfig()
	}

	db, err := Open(config.GetGlobal(), cfg)
	if err != nil {
		return err
	}
	Connect = db
	return nil
}

// Open opens the connection named by database.default in m
func Open(m *config.Manager, cfg *Config) (*gorm.DB, error) {
	if cfg == nil {
		cfg = DefaultGormConfig()
	}

	dialector, err := Dialector(m, m.GetString("database.default"))
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, cfg.GormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	return db, nil
}

// Dialector builds the gorm dialector for database.connections.<name>
func Dialector(m *config.Manager, name string) (gorm.Dialector, error) {
	dbType := MapPostgres(name)
	if dbType == "" {
		return nil, fmt.Errorf("database.default is not configured")
	}

	key := func(field string) string {
		return m.GetString(fmt.Sprintf("database.connections.%s.%s", dbType, field))
	}

	host := key("host")
	port := key("port")
	username := key("username")
	password := key("password")
	database := key("database")

	driver := key("driver")
	if driver == "" {
		driver = dbType
	}

	switch MapPostgres(driver) {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, username, password, database,
		)
		return postgres.Open(dsn), nil

	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			username, password, host, port, database,
		)
		return mysql.Open(dsn), nil

	case "sqlite":
		dsn := database
		if dsn == "" {
			dsn = "db/database.sqlite"
		}
		return sqlite.Open(dsn), nil

	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// MapPostgres normalizes the postgres aliases
func MapPostgres(name string) string {
	switch strings.ToLower(name) {
	case "postgresql", "pgsql", "pg":
		return "postgres"
	default:
		return strings.ToLower(name)
	}
}
