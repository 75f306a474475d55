package config

import (
	"fmt"
	"sort"
)

// Config holds all filesystem configuration
type Config struct {
	Default string                  // Default driver ("local", "s3", "google_drive")
	Drivers map[string]DriverConfig // Driver-specific configurations
}

// DriverConfig is the base configuration for any driver
type DriverConfig interface {
	Driver() string
	Validate() error
}

// New creates an empty configuration with the local driver as default
func New() *Config {
	return &Config{
		Default: "local",
		Drivers: make(map[string]DriverConfig),
	}
}

// SetDefault sets the default driver name
func (c *Config) SetDefault(driver string) *Config {
	c.Default = driver
	return c
}

// Driver returns the configuration for a driver
func (c *Config) Driver(name string) (DriverConfig, error) {
	d, ok := c.Drivers[name]
	if !ok {
		return nil, fmt.Errorf("filesystem driver not configured: %s", name)
	}
	return d, nil
}

// Names returns configured driver names in sorted order
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Drivers))
	for name := range c.Drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates the default driver and every configured driver
func (c *Config) Validate() error {
	if c.Default == "" {
		return fmt.Errorf("filesystems: default driver is required")
	}
	if _, ok := c.Drivers[c.Default]; !ok {
		return fmt.Errorf("filesystems: default driver %q is not configured", c.Default)
	}
	for _, name := range c.Names() {
		if err := c.Drivers[name].Validate(); err != nil {
			return err
		}
	}
	return nil
}
