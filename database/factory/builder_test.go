package factory

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type user struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"required,email"`
	Age       int       `json:"age"`
	Status    string    `json:"status"`
	IsAdmin   bool      `json:"is_admin" gorm:"column:admin"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func johnDoe(_ context.Context, _ int64) (user, error) {
	return user{
		Name:      "John Doe",
		Email:     "john@example.com",
		Age:       25,
		Status:    "active",
		IsAdmin:   true,
		CreatedAt: time.Now(),
	}, nil
}

type reported struct {
	factory string
	err     error
}

func capture(into *[]reported) Option {
	return WithReporter(func(_ context.Context, factory string, err error) {
		*into = append(*into, reported{factory: factory, err: err})
	})
}

func echoBackend[T any]() (BackendFuncs[T], *atomic.Int32, *atomic.Int32) {
	var creates, inserts atomic.Int32
	return BackendFuncs[T]{
		CreateFunc: func(_ context.Context, record T) (T, error) {
			creates.Add(1)
			return record, nil
		},
		InsertManyFunc: func(_ context.Context, records []T) ([]T, error) {
			inserts.Add(1)
			return records, nil
		},
	}, &creates, &inserts
}

func TestMakeSingleWithoutMutations(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	res, err := f.Make(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.False(t, res.Many())

	u, ok := res.Value().(user)
	require.True(t, ok, "single-record result should expose the bare record")
	assert.Equal(t, "John Doe", u.Name)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, 25, u.Age)
	assert.Equal(t, "active", u.Status)
	assert.True(t, u.IsAdmin)
	assert.False(t, u.CreatedAt.IsZero())
}

func TestMakeWithCount(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	for _, n := range []int{2, 3, 10} {
		res, err := f.Count(n).Make(context.Background())
		require.NoError(t, err)
		assert.Len(t, res, n)
		assert.True(t, res.Many())

		all, ok := res.Value().([]user)
		require.True(t, ok)
		assert.Len(t, all, n)
	}
}

func TestMakeDoesNotTouchBackend(t *testing.T) {
	backend, creates, inserts := echoBackend[user]()
	f := New[user](backend, johnDoe)

	_, err := f.Count(3).Make(context.Background())
	require.NoError(t, err)
	assert.Zero(t, creates.Load())
	assert.Zero(t, inserts.Load())
}

func TestWithStateOverridesFields(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	res, err := f.WithState(Patch{"status": "inactive"}).Make(context.Background())
	require.NoError(t, err)

	u := res.One()
	assert.Equal(t, "inactive", u.Status)
	assert.Equal(t, "John Doe", u.Name)
}

func TestMutationsApplyInRegistrationOrder(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	res, err := f.
		WithState(Patch{"Age": 1}).
		WithState(Patch{"Age": 2}).
		Tap(func(u *user) { u.Name = u.Name + " Jr." }).
		Make(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, res.One().Age)
	assert.Equal(t, "John Doe Jr.", res.One().Name)
}

func TestDynamicStateRunsOncePerRecord(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	calls := 0
	res, err := f.Count(3).WithStateFunc(func() Patch {
		calls++
		return Patch{"age": calls * 10}
	}).Make(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{10, 20, 30}, []int{res[0].Age, res[1].Age, res[2].Age})
}

func TestStaticStateIsCopiedAtRegistration(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	p := Patch{"status": "banned"}
	f.WithState(p)
	p["status"] = "changed later"

	res, err := f.Make(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "banned", res.One().Status)
}

func TestStateResetsAfterMake(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	_, err := f.Count(2).WithState(Patch{"status": "inactive"}).Make(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, f.Quantity())

	res, err := f.Make(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "active", res.One().Status)
}

func TestSetQuantityRejectsInvalidValues(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)
	require.NoError(t, f.SetQuantity(3))

	for _, n := range []int{0, -1, math.MinInt} {
		err := f.SetQuantity(n)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "n=%d", n)
		assert.Equal(t, 3, f.Quantity(), "quantity must survive a rejected value")
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, q := range []float64{0, -1, 1.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := ValidateQuantity(q)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "q=%v", q)

		var fe *FactoryError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, KindConfiguration, fe.Kind)
	}

	n, err := ValidateQuantity(4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = ValidateQuantity(float64(math.MaxInt))
	assert.ErrorIs(t, err, ErrInvalidQuantity, "values that overflow int are rejected")

	if strconv.IntSize == 64 {
		big := float64(math.MaxInt32) + 1
		n, err = ValidateQuantity(big)
		require.NoError(t, err)
		assert.EqualValues(t, int64(math.MaxInt32)+1, n)

		f := New[user](nil, johnDoe)
		require.NoError(t, f.SetQuantity(n), "SetQuantity accepts what ValidateQuantity accepts")
		assert.Equal(t, n, f.Quantity())
	}
}

func TestCountErrorFailsNextCycleOnly(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)

	_, err := f.Count(2).Count(0).Make(context.Background())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	res, err := f.Make(context.Background())
	require.NoError(t, err)
	assert.Len(t, res, 1)
}

func TestCreateSingleCallsCreate(t *testing.T) {
	backend, creates, inserts := echoBackend[user]()
	f := New[user](backend, johnDoe)

	res, err := f.Count(1).Create(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "John Doe", res.One().Name)
	assert.EqualValues(t, 1, creates.Load())
	assert.Zero(t, inserts.Load())
}

func TestCreateManyCallsInsertMany(t *testing.T) {
	backend, creates, inserts := echoBackend[user]()
	f := New[user](backend, johnDoe)

	res, err := f.Count(2).Create(context.Background())
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Zero(t, creates.Load())
	assert.EqualValues(t, 1, inserts.Load())
}

func TestCreateReturnsBackendResponse(t *testing.T) {
	backend := BackendFuncs[user]{
		CreateFunc: func(_ context.Context, u user) (user, error) {
			u.ID = 42
			return u, nil
		},
	}
	f := New[user](backend, johnDoe)

	res, err := f.Create(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 42, res.One().ID)
}

func TestCreateTranslatesBackendErrors(t *testing.T) {
	boom := errors.New("duplicate key")
	backend := BackendFuncs[user]{
		InsertManyFunc: func(context.Context, []user) ([]user, error) {
			return nil, boom
		},
	}

	var reports []reported
	f := New[user](backend, johnDoe, WithName("users"), capture(&reports))

	res, err := f.Count(2).Create(context.Background())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrCreation)
	assert.NotErrorIs(t, err, boom, "backend error must not leak to the caller")

	require.Len(t, reports, 1)
	assert.Equal(t, "users", reports[0].factory)
	assert.ErrorIs(t, reports[0].err, boom)
}

func TestCreateFailureStillResets(t *testing.T) {
	backend := BackendFuncs[user]{
		InsertManyFunc: func(context.Context, []user) ([]user, error) {
			return nil, errors.New("offline")
		},
	}
	var reports []reported
	f := New[user](backend, johnDoe, capture(&reports))

	_, err := f.Count(3).WithState(Patch{"status": "x"}).Create(context.Background())
	require.ErrorIs(t, err, ErrCreation)

	assert.Equal(t, 1, f.Quantity())
	res, err := f.Make(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "active", res.One().Status)
}

func TestCycleCanRetryCreate(t *testing.T) {
	var attempts int
	backend := BackendFuncs[user]{
		InsertManyFunc: func(_ context.Context, users []user) ([]user, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("transient")
			}
			return users, nil
		},
	}
	var reports []reported
	f := New[user](backend, johnDoe, capture(&reports))

	cycle := f.Count(2).WithState(Patch{"status": "retry"}).Cycle()

	_, err := cycle.Create(context.Background())
	require.ErrorIs(t, err, ErrCreation)

	res, err := cycle.Create(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "retry", res[1].Status)
	assert.Equal(t, 2, attempts)
}

func TestCreateWithoutBackend(t *testing.T) {
	var reports []reported
	f := New[user](nil, johnDoe, capture(&reports))

	_, err := f.Create(context.Background())
	assert.ErrorIs(t, err, ErrCreation)
	assert.Len(t, reports, 1)
}

func TestDefinitionErrorsPassThrough(t *testing.T) {
	defErr := errors.New("definition failed")
	f := New[user](NewMemoryBackend[user](), func(context.Context, int64) (user, error) {
		return user{}, defErr
	})

	_, err := f.Create(context.Background())
	assert.Same(t, defErr, err)

	var fe *FactoryError
	assert.False(t, errors.As(err, &fe))
}

func TestMutationErrorsFailTheCycle(t *testing.T) {
	backend, creates, _ := echoBackend[user]()
	f := New[user](backend, johnDoe)

	_, err := f.WithState(Patch{"no_such_field": 1}).Create(context.Background())
	assert.ErrorIs(t, err, ErrInvalidPatch)
	assert.Zero(t, creates.Load())
}

func TestMapRecords(t *testing.T) {
	def := func(context.Context, int64) (map[string]any, error) {
		return map[string]any{"name": "A"}, nil
	}
	f := New[map[string]any](NewMemoryBackend[map[string]any](), def)

	res, err := f.WithState(Patch{"name": "B"}).Count(2).Make(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"name": "B"}, {"name": "B"}}, []map[string]any(res))
}

func TestCreateSingleEchoReturnsGeneratedRecord(t *testing.T) {
	backend, _, _ := echoBackend[user]()
	f := New[user](backend, johnDoe)

	made, err := f.Count(1).Make(context.Background())
	require.NoError(t, err)
	created, err := f.Count(1).Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, made.One().Name, created.One().Name)
	assert.Equal(t, made.One().Email, created.One().Email)
}

func TestSequenceContinuesAcrossCycles(t *testing.T) {
	var seen []int64
	f := New[user](NewMemoryBackend[user](), func(_ context.Context, seq int64) (user, error) {
		seen = append(seen, seq)
		return user{}, nil
	})

	_, err := f.Count(2).Make(context.Background())
	require.NoError(t, err)
	_, err = f.Count(3).Make(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, seen)
}

func TestCycleGenerateDoesNotAccumulate(t *testing.T) {
	f := New[user](NewMemoryBackend[user](), johnDoe)
	cycle := f.Count(3).Cycle()

	first, err := cycle.Generate(context.Background())
	require.NoError(t, err)
	second, err := cycle.Generate(context.Background())
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Len(t, second, 3)
	assert.Equal(t, 3, cycle.Quantity())
}

func TestGenerateStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	def := func(context.Context, int64) (user, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return user{}, nil
	}

	_, err := Generate(ctx, def, Config[user]{Quantity: 5})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, calls)
}

func TestGenerateRejectsEmptyConfig(t *testing.T) {
	_, err := Generate(context.Background(), johnDoe, Config[user]{})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestManyHelpers(t *testing.T) {
	backend := NewMemoryBackend[user]()
	f := New[user](backend, johnDoe)

	made, err := f.MakeMany(context.Background(), 4)
	require.NoError(t, err)
	assert.Len(t, made, 4)
	assert.Zero(t, backend.Len())

	created, err := f.CreateMany(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.Equal(t, 3, backend.Len())

	_, err = f.CreateMany(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestMetricsCountRecordsAndFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	fail := false
	backend := BackendFuncs[user]{
		InsertManyFunc: func(_ context.Context, users []user) ([]user, error) {
			if fail {
				return nil, errors.New("down")
			}
			return users, nil
		},
	}
	var reports []reported
	f := New[user](backend, johnDoe, WithName("users"), WithMetrics(m), capture(&reports))

	_, err = f.Count(3).Create(context.Background())
	require.NoError(t, err)
	fail = true
	_, err = f.Count(2).Create(context.Background())
	require.Error(t, err)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.Generated.WithLabelValues("users")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Persisted.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("users")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "registering twice must fail")
}

func TestDefaultNameIsTypeName(t *testing.T) {
	assert.Equal(t, "user", New[user](nil, johnDoe).Name())
	assert.Equal(t, "user", New[*user](nil, nil).Name())
}

// UserFactory shows the embedding pattern for per-model factories.
type UserFactory struct {
	*BaseFactory[user]
}

func NewUserFactory(backend Backend[user], faker *gofakeit.Faker) *UserFactory {
	return &UserFactory{New(backend, func(_ context.Context, seq int64) (user, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		if err != nil {
			return user{}, err
		}
		return user{
			Name:     faker.Name(),
			Email:    faker.Email(),
			Age:      faker.Number(18, 90),
			Status:   faker.RandomString([]string{"active", "inactive"}),
			Password: string(hash),
		}, nil
	})}
}

func (f *UserFactory) Admin() *UserFactory {
	f.WithState(Patch{"is_admin": true})
	return f
}

func TestEmbeddedFactoryWithFakeData(t *testing.T) {
	backend := NewMemoryBackend[user]()
	f := NewUserFactory(backend, gofakeit.New(42))

	res, err := f.Admin().Count(5).Create(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 5)

	emails := map[string]bool{}
	for _, u := range res {
		assert.True(t, u.IsAdmin)
		assert.NotEmpty(t, u.Name)
		assert.Contains(t, []string{"active", "inactive"}, u.Status)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))
		emails[u.Email] = true
	}
	assert.Greater(t, len(emails), 1, "each record comes from its own definition call")
	assert.Equal(t, 5, backend.Len())

	res, err = f.Make(context.Background())
	require.NoError(t, err)
	assert.False(t, res.One().IsAdmin)
}
