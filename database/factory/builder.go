package factory

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/galaplate/fixture/database"
	"github.com/galaplate/fixture/logger"
)

// Reporter receives the underlying cause of a failed persistence call.
type Reporter func(ctx context.Context, factory string, err error)

// LogReporter writes persistence failures to the application log.
func LogReporter(_ context.Context, factory string, err error) {
	logger.Error("Error occurred during creation", map[string]any{
		"factory": factory,
		"error":   err.Error(),
	})
}

type Option func(*options)

type options struct {
	name     string
	reporter Reporter
	metrics  *Metrics
}

// WithName sets the name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func WithReporter(r Reporter) Option {
	return func(o *options) { o.reporter = r }
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

type BaseFactory[T any] struct {
	backend Backend[T]
	def     Definition[T]
	seq     *Sequence
	opts    options

	mu        sync.Mutex
	quantity  int
	mutations []Mutation[T]
	err       error
}

var _ Factory[struct{}] = (*BaseFactory[struct{}])(nil)

// New creates a factory producing records from def and persisting them to backend.
func New[T any](backend Backend[T], def Definition[T], opts ...Option) *BaseFactory[T] {
	o := options{reporter: LogReporter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.name == "" {
		o.name = typeName[T]()
	}
	if o.reporter == nil {
		o.reporter = LogReporter
	}

	return &BaseFactory[T]{
		backend:  backend,
		def:      def,
		seq:      &Sequence{},
		opts:     o,
		quantity: 1,
	}
}

// NewBaseFactory creates a factory for a model persisted through the default database connection
func NewBaseFactory[T any](builder func(seq int64) T, opts ...Option) *BaseFactory[T] {
	return New(NewGormBackend[T](database.Connect), FromBuilder(builder), opts...)
}

func (f *BaseFactory[T]) Name() string {
	return f.opts.name
}

func (f *BaseFactory[T]) Backend() Backend[T] {
	return f.backend
}

func (f *BaseFactory[T]) Quantity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.quantity
}

// SetQuantity sets how many records the next cycle produces.
func (f *BaseFactory[T]) SetQuantity(n int) error {
	if n < 1 {
		return ErrInvalidQuantity
	}
	f.mu.Lock()
	f.quantity = n
	f.mu.Unlock()
	return nil
}

// Count is the chaining form of SetQuantity. An invalid n keeps the current
// quantity and fails the next Make or Create.
func (f *BaseFactory[T]) Count(n int) *BaseFactory[T] {
	if err := f.SetQuantity(n); err != nil {
		f.mu.Lock()
		if f.err == nil {
			f.err = err
		}
		f.mu.Unlock()
	}
	return f
}

// WithState merges p into every record of the next cycle.
func (f *BaseFactory[T]) WithState(p Patch) *BaseFactory[T] {
	return f.WithMutation(State[T](p))
}

// WithStateFunc merges the result of fn, called once per record.
func (f *BaseFactory[T]) WithStateFunc(fn func() Patch) *BaseFactory[T] {
	return f.WithMutation(StateFunc[T](fn))
}

func (f *BaseFactory[T]) Tap(fn func(*T)) *BaseFactory[T] {
	return f.WithMutation(Mutate(fn))
}

func (f *BaseFactory[T]) WithMutation(m Mutation[T]) *BaseFactory[T] {
	f.mu.Lock()
	f.mutations = append(f.mutations, m)
	f.mu.Unlock()
	return f
}

// Reset drops the pending configuration.
func (f *BaseFactory[T]) Reset() {
	f.mu.Lock()
	f.reset()
	f.mu.Unlock()
}

func (f *BaseFactory[T]) reset() {
	f.quantity = 1
	f.mutations = nil
	f.err = nil
}

// Cycle takes the pending configuration and resets the factory.
func (f *BaseFactory[T]) Cycle() Cycle[T] {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := Cycle[T]{
		factory: f,
		config: Config[T]{
			Quantity:  f.quantity,
			Mutations: f.mutations,
			Sequence:  f.seq,
		},
		err: f.err,
	}
	f.reset()
	return c
}

// Make generates records without persisting them.
func (f *BaseFactory[T]) Make(ctx context.Context) (Result[T], error) {
	return f.Cycle().Make(ctx)
}

// Create generates records and persists them through the backend.
func (f *BaseFactory[T]) Create(ctx context.Context) (Result[T], error) {
	return f.Cycle().Create(ctx)
}

// MakeMany builds n records, does not persist
func (f *BaseFactory[T]) MakeMany(ctx context.Context, n int) ([]T, error) {
	res, err := f.Count(n).Make(ctx)
	return res, err
}

// CreateMany builds and persists n records
func (f *BaseFactory[T]) CreateMany(ctx context.Context, n int) ([]T, error) {
	res, err := f.Count(n).Create(ctx)
	return res, err
}

// Cycle is an immutable snapshot of a factory's configuration. Its methods
// may be called repeatedly, each call generating fresh records.
type Cycle[T any] struct {
	factory *BaseFactory[T]
	config  Config[T]
	err     error
}

func (c Cycle[T]) Quantity() int {
	return c.config.Quantity
}

func (c Cycle[T]) Generate(ctx context.Context) ([]T, error) {
	if c.err != nil {
		return nil, c.err
	}

	records, err := Generate(ctx, c.factory.def, c.config)
	if err != nil {
		return nil, err
	}
	c.factory.opts.metrics.generated(c.factory.opts.name, len(records))
	return records, nil
}

func (c Cycle[T]) Make(ctx context.Context) (Result[T], error) {
	records, err := c.Generate(ctx)
	if err != nil {
		return nil, err
	}
	return Result[T](records), nil
}

func (c Cycle[T]) Create(ctx context.Context) (Result[T], error) {
	records, err := c.Generate(ctx)
	if err != nil {
		return nil, err
	}

	f := c.factory
	if f.backend == nil {
		f.fail(ctx, fmt.Errorf("no backend configured for %s", f.opts.name))
		return nil, ErrCreation
	}

	if len(records) == 1 {
		created, err := f.backend.Create(ctx, records[0])
		if err != nil {
			f.fail(ctx, err)
			return nil, ErrCreation
		}
		f.opts.metrics.persisted(f.opts.name, 1)
		return Result[T]{created}, nil
	}

	created, err := f.backend.InsertMany(ctx, records)
	if err != nil {
		f.fail(ctx, err)
		return nil, ErrCreation
	}
	f.opts.metrics.persisted(f.opts.name, len(created))
	return Result[T](created), nil
}

func (f *BaseFactory[T]) fail(ctx context.Context, err error) {
	f.opts.metrics.failed(f.opts.name)
	f.opts.reporter(ctx, f.opts.name, err)
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.Name()
}
