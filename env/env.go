package env

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

var dotenv sync.Once

// Get returns the environment value for key. The first miss loads .env from
// the working directory; values already in the environment are never overridden.
func Get(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	dotenv.Do(func() {
		_ = godotenv.Load(".env")
	})

	return os.Getenv(key)
}

// GetDefault returns Get(key), or fallback when it is empty.
func GetDefault(key, fallback string) string {
	if value := Get(key); value != "" {
		return value
	}
	return fallback
}

// Load reads the given env files into the process environment. Missing files are skipped.
func Load(files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return err
		}
	}
	return nil
}
