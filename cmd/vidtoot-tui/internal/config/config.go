// Package config loads TUI settings from the environment.
package config

import (
	"os"
	"time"
)

// Config holds the TUI configuration.
type Config struct {
	// Server connection
	ServerURL string
	Username  string
	Password  string

	// Job list refresh interval
	Refresh time.Duration
}

// Load reads configuration from environment variables, falling back to
// defaults that match a local server.
func Load() *Config {
	return &Config{
		ServerURL: getEnv("VIDTOOT_SERVER_URL", "http://localhost:5000"),
		Username:  getEnv("VIDTOOT_USER", ""),
		Password:  getEnv("VIDTOOT_PASSWORD", ""),
		Refresh:   getDuration("VIDTOOT_REFRESH", 5*time.Second),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
