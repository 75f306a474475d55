package config

import "time"

// Config retrieves a configuration value using dot notation
// This is the main helper function to be used throughout the application
// Example: config.Config("factory.backend")
func Config(key string) any {
	return GetGlobal().Get(key)
}

// ConfigString retrieves a string configuration value
// Example: config.ConfigString("database.default")
func ConfigString(key string) string {
	return GetGlobal().GetString(key)
}

// ConfigInt retrieves an int configuration value
// Example: config.ConfigInt("factory.batch_size")
func ConfigInt(key string) int {
	return GetGlobal().GetInt(key)
}

// ConfigBool retrieves a bool configuration value
// Example: config.ConfigBool("factory.validate")
func ConfigBool(key string) bool {
	return GetGlobal().GetBool(key)
}

// ConfigDuration retrieves a duration configuration value
// Example: config.ConfigDuration("mongo.timeout")
func ConfigDuration(key string) time.Duration {
	return GetGlobal().GetDuration(key)
}
