package seeder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/galaplate/fixture/database/factory"
	"github.com/galaplate/fixture/logger"
)

var ErrUnknownSeeder = errors.New("seeder: unknown seeder")

// Seeder fills a store with fixture data.
type Seeder interface {
	Run(ctx context.Context) error
}

type SeederFunc func(ctx context.Context) error

func (f SeederFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// FromFactory returns a seeder that creates n records with f on every run.
func FromFactory[T any](f factory.Factory[T], n int) Seeder {
	return SeederFunc(func(ctx context.Context) error {
		_, err := f.CreateMany(ctx, n)
		return err
	})
}

// Registry keeps seeders by name in registration order.
type Registry struct {
	mu      sync.RWMutex
	seeders map[string]Seeder
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{seeders: make(map[string]Seeder)}
}

// Register adds s under name. Registering a name twice replaces the seeder
// and keeps its original position.
func (r *Registry) Register(name string, s Seeder) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seeders[name]; !exists {
		r.order = append(r.order, name)
	}
	r.seeders[name] = s
}

func (r *Registry) Get(name string) (Seeder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.seeders[name]
	return s, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Run runs the named seeders in the given order, or every seeder in
// registration order when names is empty. Unknown names are reported before
// anything runs; the first failing seeder stops the run.
func (r *Registry) Run(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		names = r.Names()
	}

	seeders := make([]Seeder, 0, len(names))
	for _, name := range names {
		s, ok := r.Get(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSeeder, name)
		}
		seeders = append(seeders, s)
	}

	for i, s := range seeders {
		name := names[i]
		start := time.Now()
		logger.Info("Seeding", map[string]any{"seeder": name})

		if err := s.Run(ctx); err != nil {
			logger.Error("Seeder failed", map[string]any{
				"seeder": name,
				"error":  err.Error(),
			})
			return fmt.Errorf("seeder %s: %w", name, err)
		}

		logger.Info("Seeded", map[string]any{
			"seeder":   name,
			"duration": time.Since(start).String(),
		})
	}
	return nil
}

var defaultRegistry = NewRegistry()

// Default returns the registry used by the package-level functions.
func Default() *Registry {
	return defaultRegistry
}

// Register adds s to the default registry, usually from an init function.
func Register(name string, s Seeder) {
	defaultRegistry.Register(name, s)
}

func Run(ctx context.Context, names ...string) error {
	return defaultRegistry.Run(ctx, names...)
}

func Names() []string {
	return defaultRegistry.Names()
}
