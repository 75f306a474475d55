package config

import "fmt"

// LocalConfig holds local filesystem configuration
type LocalConfig struct {
	Path string // Directory fixture files are written under
}

// Driver returns the driver name
func (lc *LocalConfig) Driver() string {
	return "local"
}

// Validate validates local configuration
func (lc *LocalConfig) Validate() error {
	if lc.Path == "" {
		return fmt.Errorf("local driver: path is required")
	}
	return nil
}

// WithLocalDriver adds a local driver configuration
func (c *Config) WithLocalDriver(path string) *Config {
	if path == "" {
		path = DefaultLocalPath
	}
	c.Drivers["local"] = &LocalConfig{Path: path}
	return c
}
