// Package config loads client configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the client needs to run.
type Config struct {
	// APIBaseURL is the remote API prefix, e.g. "https://api.example.com/api".
	// May be empty; the UI surfaces that as a connectivity error.
	APIBaseURL string
	DBPath     string
	LogPath    string
	Refresh    time.Duration
}

const defaultRefresh = 300 * time.Second

// Load reads configuration from a .env file (if present) and the environment.
func Load() Config {
	// A missing .env file is fine; env vars may be set directly.
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL: strings.TrimRight(os.Getenv("MINDCALLS_API_BASE_URL"), "/"),
		DBPath:     os.Getenv("MINDCALLS_DB_PATH"),
		LogPath:    os.Getenv("MINDCALLS_LOG_PATH"),
		Refresh:    defaultRefresh,
	}

	if v := os.Getenv("MINDCALLS_REFRESH_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Refresh = time.Duration(secs) * time.Second
		}
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(configDir(), "mindcalls.sqlite")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(configDir(), "mindcalls.log")
	}

	return cfg
}

func configDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "mindcalls")
}
