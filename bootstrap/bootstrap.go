package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/galaplate/fixture/config"
	"github.com/galaplate/fixture/database"
	"github.com/galaplate/fixture/env"
	"github.com/galaplate/fixture/logger"
	"github.com/galaplate/fixture/scheduler"
)

// AppConfig holds configuration for booting the fixture tooling
type AppConfig struct {
	EnvFiles        []string
	ConfigDir       string
	DatabaseConfig  *database.Config
	ConnectDatabase bool
	StartScheduler  bool
}

// DefaultConfig returns default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		EnvFiles:        []string{".env"},
		ConfigDir:       "./config",
		ConnectDatabase: true,
	}
}

type Option func(*AppConfig)

func WithEnvFiles(files ...string) Option {
	return func(c *AppConfig) { c.EnvFiles = files }
}

func WithConfigDir(dir string) Option {
	return func(c *AppConfig) { c.ConfigDir = dir }
}

// WithDatabaseConfig replaces the gorm configuration of the default connection
func WithDatabaseConfig(cfg *database.Config) Option {
	return func(c *AppConfig) { c.DatabaseConfig = cfg }
}

// WithoutDatabase skips connecting database.Connect (tests set their own)
func WithoutDatabase() Option {
	return func(c *AppConfig) { c.ConnectDatabase = false }
}

// WithScheduler starts the cron scheduler with the seeders listed under scheduler.seeders
func WithScheduler() Option {
	return func(c *AppConfig) { c.StartScheduler = true }
}

// App is what Init leaves running
type App struct {
	Config    *config.Manager
	Scheduler *scheduler.Scheduler
}

func Init(opts ...Option) (*App, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return InitWithConfig(cfg)
}

func InitWithConfig(cfg *AppConfig) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := env.Load(cfg.EnvFiles...); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	m := config.GetGlobal()
	if cfg.ConfigDir != "" {
		if _, err := os.Stat(cfg.ConfigDir); err == nil {
			if err := config.NewLoader(cfg.ConfigDir).LoadInto(m); err != nil {
				return nil, err
			}
		} else {
			logger.Debug("Config directory not found, using defaults", map[string]any{"dir": cfg.ConfigDir})
		}
	}

	if err := configureLogger(m); err != nil {
		return nil, err
	}

	if cfg.ConnectDatabase && m.GetString("database.default") != "" {
		if err := database.ConnectWithConfig(cfg.DatabaseConfig); err != nil {
			return nil, err
		}
	}

	app := &App{Config: m}
	if cfg.StartScheduler {
		if err := scheduler.RegisterSeeders(m, nil); err != nil {
			return nil, err
		}
		app.Scheduler = scheduler.New()
		if err := app.Scheduler.RunTasks(); err != nil {
			return nil, err
		}
		app.Scheduler.Start()
	}

	return app, nil
}

func configureLogger(m *config.Manager) error {
	level, err := logger.ParseLogLevel(m.GetString("logging.level"))
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	if dir := m.GetString("logging.path"); dir != "" {
		return logger.Configure(dir)
	}
	return nil
}

// Shutdown stops the scheduler and closes the default database connection
func (a *App) Shutdown(ctx context.Context) error {
	if a.Scheduler != nil {
		select {
		case <-a.Scheduler.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if database.Connect != nil {
		sqlDB, err := database.Connect.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
