package testing

// WithRefreshDatabase rebuilds the model tables once, before the first test
// of the suite.
type WithRefreshDatabase struct {
	TestCase
}

func (w *WithRefreshDatabase) SetupTest() {
	w.EnableRefreshDatabase()
	w.TestCase.SetupTest()
}

func (w *WithRefreshDatabase) SetupSuite() {
	w.EnableRefreshDatabase()
}

// RefreshDatabaseBeforeEachTest rebuilds the model tables before every test.
// Only useful with TestConfig.DatabasePath; temporary databases start empty.
type RefreshDatabaseBeforeEachTest struct {
	TestCase
}

func (r *RefreshDatabaseBeforeEachTest) SetupTest() {
	r.EnableRefreshDatabase()
	r.RefreshDatabaseBetweenTests()
	r.TestCase.SetupTest()
}
