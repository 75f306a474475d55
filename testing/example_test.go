package testing_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/galaplate/fixture/database"
	"github.com/galaplate/fixture/database/factory"
	fixturetesting "github.com/galaplate/fixture/testing"
)

type Customer struct {
	ID       uint   `gorm:"primaryKey"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"`
	Active   bool   `json:"active"`
}

func newCustomerFactory(tc *fixturetesting.TestCase) *factory.BaseFactory[Customer] {
	faker := gofakeit.New(0)
	return factory.New(fixturetesting.Backend[Customer](tc), func(context.Context, int64) (Customer, error) {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		if err != nil {
			return Customer{}, err
		}
		return Customer{
			Name:     faker.Name(),
			Email:    faker.Email(),
			Password: string(hash),
			Active:   true,
		}, nil
	})
}

type ExampleTestSuite struct {
	fixturetesting.TestCase
}

func (s *ExampleTestSuite) SetupSuite() {
	s.Config = fixturetesting.DefaultTestConfig()
	s.Config.Models = []any{&Customer{}}
}

func (s *ExampleTestSuite) TestCreatePersistsRecords() {
	dbHelper := fixturetesting.NewDatabaseHelper(&s.TestCase)
	customers := newCustomerFactory(&s.TestCase)

	created := fixturetesting.Create[Customer](&s.TestCase, customers, 3)
	s.Len(created, 3)

	dbHelper.AssertDatabaseCount("customers", 3)
	dbHelper.AssertDatabaseHas("customers", map[string]any{"email": created[0].Email})
	dbHelper.AssertDatabaseMissing("customers", map[string]any{"active": false})
}

func (s *ExampleTestSuite) TestStateOverridesArePersisted() {
	dbHelper := fixturetesting.NewDatabaseHelper(&s.TestCase)

	_, err := newCustomerFactory(&s.TestCase).
		Count(2).
		WithState(factory.Patch{"active": false}).
		Create(context.Background())
	s.Require().NoError(err)

	dbHelper.AssertDatabaseHas("customers", map[string]any{"active": false})
	dbHelper.AssertDatabaseCount("customers", 2)
}

func (s *ExampleTestSuite) TestEachTestStartsEmpty() {
	dbHelper := fixturetesting.NewDatabaseHelper(&s.TestCase)
	dbHelper.AssertDatabaseCount("customers", 0)
}

func (s *ExampleTestSuite) TestDefaultConnectionPointsAtTestDatabase() {
	s.Same(s.DB, database.Connect)

	f := factory.NewBaseFactory(func(int64) Customer {
		return Customer{Name: "seeded", Email: gofakeit.Email()}
	})
	_, err := f.Create(context.Background())
	s.Require().NoError(err)

	fixturetesting.NewDatabaseHelper(&s.TestCase).AssertDatabaseHas("customers", map[string]any{"name": "seeded"})
}

func TestExampleTestSuite(t *testing.T) {
	suite.Run(t, new(ExampleTestSuite))
}

type RefreshDatabaseExampleSuite struct {
	fixturetesting.WithRefreshDatabase
}

func (s *RefreshDatabaseExampleSuite) SetupSuite() {
	s.Config = fixturetesting.DefaultTestConfig()
	s.Config.Models = []any{&Customer{}}
	s.Config.DatabasePath = s.T().TempDir() + "/shared.sqlite"
	s.WithRefreshDatabase.SetupSuite()
}

func (s *RefreshDatabaseExampleSuite) TestDatabaseOperation() {
	dbHelper := fixturetesting.NewDatabaseHelper(&s.TestCase)

	dbHelper.AssertDatabaseCount("customers", 0)
	s.Require().NoError(dbHelper.Create(&Customer{Name: "kept", Email: "kept@example.com"}))
	dbHelper.AssertDatabaseCount("customers", 1)
}

func TestRefreshDatabaseExampleSuite(t *testing.T) {
	suite.Run(t, new(RefreshDatabaseExampleSuite))
}
