package testing

import (
	"context"

	"github.com/galaplate/fixture/database/factory"
)

type DatabaseHelper struct {
	tc *TestCase
}

func NewDatabaseHelper(tc *TestCase) *DatabaseHelper {
	return &DatabaseHelper{tc: tc}
}

func (d *DatabaseHelper) AssertDatabaseHas(table string, conditions map[string]any) {
	count := d.count(table, conditions)
	d.tc.True(count > 0, "Expected to find record in table %s with conditions %v", table, conditions)
}

func (d *DatabaseHelper) AssertDatabaseMissing(table string, conditions map[string]any) {
	count := d.count(table, conditions)
	d.tc.True(count == 0, "Expected NOT to find record in table %s with conditions %v", table, conditions)
}

func (d *DatabaseHelper) AssertDatabaseCount(table string, expectedCount int) {
	count := d.count(table, nil)
	d.tc.Equal(int64(expectedCount), count, "Expected %d records in table %s, got %d", expectedCount, table, count)
}

func (d *DatabaseHelper) count(table string, conditions map[string]any) int64 {
	var count int64

	query := d.tc.GetDB().Table(table)
	for key, value := range conditions {
		query = query.Where(key+" = ?", value)
	}

	d.tc.Require().NoError(query.Count(&count).Error, "count rows in %s", table)
	return count
}

func (d *DatabaseHelper) Create(model any) error {
	return d.tc.GetDB().Create(model).Error
}

func (d *DatabaseHelper) Find(dest any, conditions ...any) error {
	return d.tc.GetDB().First(dest, conditions...).Error
}

func (d *DatabaseHelper) Delete(model any) error {
	return d.tc.GetDB().Delete(model).Error
}

// Backend returns a gorm backend writing to the test database.
func Backend[T any](tc *TestCase) *factory.GormBackend[T] {
	return factory.NewGormBackend[T](tc.GetDB())
}

// Create runs n records through f and fails the test on any error.
func Create[T any](tc *TestCase, f factory.Factory[T], n int) []T {
	records, err := f.CreateMany(context.Background(), n)
	tc.Require().NoError(err, "create %d fixtures", n)
	return records
}
