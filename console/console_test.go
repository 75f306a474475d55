package console

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galaplate/fixture/console/commands"
	"github.com/galaplate/fixture/logger"
	"github.com/galaplate/fixture/seeder"
)

func TestListIsTheDefaultCommand(t *testing.T) {
	var out bytes.Buffer
	k := NewKernel(&out)

	require.NoError(t, k.Run(nil))
	for _, sig := range []string{"db:seed", "list", "make:factory", "make:seeder"} {
		assert.Contains(t, out.String(), sig)
	}
}

func TestUnknownCommand(t *testing.T) {
	k := NewKernel(&bytes.Buffer{})
	assert.ErrorContains(t, k.Run([]string{"db:migrate"}), `command "db:migrate" not found`)
}

func TestMakeFactoryWritesStub(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	cmd := &commands.MakeFactoryCommand{BaseCommand: commands.BaseCommand{Out: &out}, Dir: dir}
	require.NoError(t, cmd.Execute([]string{"blog_post"}))

	data, err := os.ReadFile(filepath.Join(dir, "blog_post_factory.go"))
	require.NoError(t, err)

	src := string(data)
	assert.Contains(t, src, "type BlogPostFactory struct")
	assert.Contains(t, src, "func NewBlogPostFactory() *BlogPostFactory")
	assert.Contains(t, src, "factory.BaseFactory[models.BlogPost]")
	assert.Contains(t, src, `"github.com/galaplate/fixture/database/factory"`)
	assert.Contains(t, src, `"github.com/galaplate/fixture/models"`)
	assert.Contains(t, out.String(), "Factory created successfully")

	assert.ErrorContains(t, cmd.Execute([]string{"blog_post"}), "already exists")
}

func TestMakeFactoryAsksForMissingName(t *testing.T) {
	dir := t.TempDir()
	cmd := &commands.MakeFactoryCommand{
		BaseCommand: commands.BaseCommand{Out: &bytes.Buffer{}, In: bytes.NewBufferString("\nInvoice\n")},
		Dir:         dir,
	}

	require.NoError(t, cmd.Execute(nil))
	assert.FileExists(t, filepath.Join(dir, "invoice_factory.go"))
}

func TestMakeFactoryRejectsBadNames(t *testing.T) {
	cmd := &commands.MakeFactoryCommand{BaseCommand: commands.BaseCommand{Out: &bytes.Buffer{}}, Dir: t.TempDir()}
	assert.Error(t, cmd.Execute([]string{"9lives"}))
	assert.Error(t, cmd.Execute([]string{"../escape"}))
}

func TestMakeSeeder(t *testing.T) {
	dir := t.TempDir()
	cmd := &commands.MakeSeederCommand{BaseCommand: commands.BaseCommand{Out: &bytes.Buffer{}}, Dir: dir}

	assert.ErrorContains(t, cmd.Execute([]string{"Users"}), "must end with Seeder")

	require.NoError(t, cmd.Execute([]string{"UserSeeder"}))
	data, err := os.ReadFile(filepath.Join(dir, "userseeder.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `seeder.Register("userseeder", &UserSeeder{})`)
	assert.Contains(t, string(data), `"github.com/galaplate/fixture/seeder"`)
}

func TestDbSeed(t *testing.T) {
	logger.SetOutput(nil)

	registry := seeder.NewRegistry()
	var ran []string
	for _, name := range []string{"users", "posts"} {
		registry.Register(name, seeder.SeederFunc(func(context.Context) error {
			ran = append(ran, name)
			return nil
		}))
	}

	var out bytes.Buffer
	k := NewKernel(&out)
	k.Register(&commands.DbSeedCommand{BaseCommand: commands.BaseCommand{Out: &out}, Registry: registry})

	require.NoError(t, k.Run([]string{"db:seed", "posts"}))
	assert.Equal(t, []string{"posts"}, ran)

	require.NoError(t, k.Run([]string{"db:seed"}))
	assert.Equal(t, []string{"posts", "users", "posts"}, ran)
	assert.Contains(t, out.String(), "Seeded: users, posts")

	assert.ErrorIs(t, k.Run([]string{"db:seed", "missing"}), seeder.ErrUnknownSeeder)
}

func TestDbSeedWithNothingRegistered(t *testing.T) {
	var out bytes.Buffer
	cmd := &commands.DbSeedCommand{BaseCommand: commands.BaseCommand{Out: &out}, Registry: seeder.NewRegistry()}

	require.NoError(t, cmd.Execute(nil))
	assert.Contains(t, out.String(), "No seeders registered")
}
