package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every configuration parameter of the service.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// AutoFinalizeAfter is how long an active tournament may sit untouched
	// before it is finalized automatically, freeing the single-active slot.
	AutoFinalizeAfter time.Duration

	// FinalizeSweepInterval is how often the background sweeper looks for
	// stale tournaments.
	FinalizeSweepInterval time.Duration
}

// Load reads configuration from environment variables, optionally loading a
// .env file first (useful for local development).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	autoFinalize, err := durationEnv("AUTO_FINALIZE_AFTER", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	sweepInterval, err := durationEnv("FINALIZE_SWEEP_INTERVAL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:           dbURL,
		ServerPort:            port,
		AutoFinalizeAfter:     autoFinalize,
		FinalizeSweepInterval: sweepInterval,
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, d)
	}
	return d, nil
}
