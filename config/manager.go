package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Manager manages application configuration
type Manager struct {
	config map[string]any
	mu     sync.RWMutex
}

// NewManager creates a new config manager
func NewManager() *Manager {
	return &Manager{
		config: make(map[string]any),
	}
}

// Load replaces the configuration with a nested map
func (m *Manager) Load(data map[string]any) {
	if data == nil {
		data = make(map[string]any)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.config = data
}

// Set sets a configuration value using dot notation
// Example: Set("factory.backend", "memory")
func (m *Manager) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setNested(m.config, key, value)
}

// Get retrieves a configuration value using dot notation
// Example: Get("database.connections.sqlite.database")
// Returns nil if key doesn't exist
func (m *Manager) Get(key string) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getNested(m.config, key)
}

// GetString retrieves a string configuration value
func (m *Manager) GetString(key string) string {
	value := m.Get(key)
	if value == nil {
		return ""
	}
	if str, ok := value.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", value)
}

// GetStringDefault retrieves a string configuration value, or fallback when unset or empty
func (m *Manager) GetStringDefault(key, fallback string) string {
	if v := m.GetString(key); v != "" {
		return v
	}
	return fallback
}

// GetInt retrieves an int configuration value
func (m *Manager) GetInt(key string) int {
	value := m.Get(key)
	if value == nil {
		return 0
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		result, _ := strconv.Atoi(strings.TrimSpace(v))
		return result
	}
	return 0
}

// GetIntDefault retrieves an int configuration value, or fallback when unset or zero
func (m *Manager) GetIntDefault(key string, fallback int) int {
	if v := m.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// GetFloat retrieves a float configuration value
func (m *Manager) GetFloat(key string) float64 {
	switch v := m.Get(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

// GetBool retrieves a bool configuration value
func (m *Manager) GetBool(key string) bool {
	switch v := m.Get(key).(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// GetDuration retrieves a duration configuration value. Strings are parsed
// with time.ParseDuration, bare numbers are seconds.
func (m *Manager) GetDuration(key string) time.Duration {
	switch v := m.Get(key).(type) {
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return d
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return 0
}

// GetAll returns all configuration
func (m *Manager) GetAll() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Has checks if a configuration key exists
func (m *Manager) Has(key string) bool {
	return m.Get(key) != nil
}

// getNested retrieves a value from nested map using dot notation
func (m *Manager) getNested(data map[string]any, key string) any {
	if key == "" {
		return nil
	}

	parts := strings.Split(key, ".")
	var current any = data

	for _, part := range parts {
		switch c := current.(type) {
		case map[string]any:
			var ok bool
			current, ok = c[part]
			if !ok {
				return nil
			}
		default:
			return nil
		}
	}

	return current
}

// setNested sets a value in nested map using dot notation
func (m *Manager) setNested(data map[string]any, key string, value any) {
	if key == "" {
		return
	}

	parts := strings.Split(key, ".")
	current := data

	for i := range len(parts) - 1 {
		part := parts[i]
		if _, ok := current[part]; !ok {
			current[part] = make(map[string]any)
		}

		switch c := current[part].(type) {
		case map[string]any:
			current = c
		default:
			newMap := make(map[string]any)
			current[part] = newMap
			current = newMap
		}
	}

	current[parts[len(parts)-1]] = value
}

var (
	globalConfigManager *Manager
	globalMu            sync.Mutex
)

// InitializeGlobal loads data into the global config manager
func InitializeGlobal(data map[string]any) {
	GetGlobal().Load(data)
}

// SetGlobal swaps the global config manager
func SetGlobal(m *Manager) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfigManager = m
}

// GetGlobal returns the global config manager
func GetGlobal() *Manager {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfigManager == nil {
		globalConfigManager = NewManager()
	}
	return globalConfigManager
}
