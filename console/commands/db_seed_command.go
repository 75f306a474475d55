package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/galaplate/fixture/seeder"
)

type DbSeedCommand struct {
	BaseCommand
	Registry *seeder.Registry
}

func (c *DbSeedCommand) GetSignature() string {
	return "db:seed"
}

func (c *DbSeedCommand) GetDescription() string {
	return "Run all seeders, or only the named ones"
}

func (c *DbSeedCommand) Execute(args []string) error {
	registry := c.Registry
	if registry == nil {
		registry = seeder.Default()
	}

	names := args
	if len(names) == 0 {
		names = registry.Names()
	}
	if len(names) == 0 {
		c.PrintInfo("No seeders registered")
		return nil
	}

	if err := registry.Run(context.Background(), names...); err != nil {
		return err
	}

	c.PrintSuccess(fmt.Sprintf("Seeded: %s", strings.Join(names, ", ")))
	return nil
}
