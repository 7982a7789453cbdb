// Package config loads server configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	Port         int
	DatabasePath string
	LogLevel     string

	// PeopleServiceURL selects the remote people directory. Empty means the
	// local SQLite directory.
	PeopleServiceURL string
	PeopleCacheTTL   time.Duration
	PeopleRateLimit  float64

	// RegimeTablePath replaces the built-in regime tables. Empty means built-in.
	RegimeTablePath string

	CORSOrigins []string
	// APIRateLimit is requests per second accepted by the API. Zero disables.
	APIRateLimit float64
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:            8080,
		DatabasePath:    "taxengine.db",
		LogLevel:        "info",
		PeopleCacheTTL:  5 * time.Minute,
		PeopleRateLimit: 20,
		CORSOrigins:     []string{"http://localhost:5173", "http://localhost:8080"},
		APIRateLimit:    100,
	}
}

// Load reads .env (current then parent directory) and the process
// environment. Variables already set in the environment win over .env.
// A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../.env")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()
	var err error

	if v := getenv("PORT"); v != "" {
		if cfg.Port, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
	}
	if v := getenv("DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	cfg.PeopleServiceURL = strings.TrimSpace(getenv("PEOPLE_SERVICE_URL"))
	if v := getenv("PEOPLE_CACHE_TTL"); v != "" {
		if cfg.PeopleCacheTTL, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("invalid PEOPLE_CACHE_TTL %q: %w", v, err)
		}
	}
	if v := getenv("PEOPLE_RATE_LIMIT"); v != "" {
		if cfg.PeopleRateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("invalid PEOPLE_RATE_LIMIT %q: %w", v, err)
		}
	}
	cfg.RegimeTablePath = strings.TrimSpace(getenv("REGIME_TABLE_PATH"))
	if v := getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if v := getenv("API_RATE_LIMIT"); v != "" {
		if cfg.APIRateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("invalid API_RATE_LIMIT %q: %w", v, err)
		}
	}
	return cfg, nil
}
