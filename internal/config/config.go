package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrInvalidConfig is wrapped by every validation failure so callers can
// distinguish bad configuration from runtime errors.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the runtime configuration for a recognition session.
type Config struct {
	// DuplicateWindow is the minimum elapsed time between two accepted
	// detections of the same plate. Zero disables suppression.
	DuplicateWindow time.Duration

	// MinConfidence gates candidates before they reach the duplicate
	// filter. Candidates below it are never offered to the recorder.
	MinConfidence float64

	// OutputDir is where session journals are written.
	OutputDir string

	// ProcessEvery selects every Nth captured frame for recognition.
	ProcessEvery int

	// MonitorAddr is the listen address of the monitoring HTTP server.
	// Empty disables the server.
	MonitorAddr string

	// RecognizerURL is the endpoint of the external plate-recognition
	// agent. Empty means the caller supplies its own Recognizer.
	RecognizerURL string

	LogLevel  string
	LogFormat string
}

// Default returns a config aligned with the original harness defaults.
func Default() Config {
	return Config{
		DuplicateWindow: 5 * time.Second,
		MinConfidence:   0.7,
		OutputDir:       "alpr_sessions",
		ProcessEvery:    5,
		MonitorAddr:     ":8080",
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load reads configuration from PLATEWATCH_* environment variables on top
// of the defaults.
func Load() (Config, error) {
	cfg := Default()

	window, err := getEnvDuration("PLATEWATCH_DUPLICATE_WINDOW", cfg.DuplicateWindow)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.DuplicateWindow = window

	minConf, err := getEnvFloat("PLATEWATCH_MIN_CONFIDENCE", cfg.MinConfidence)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.MinConfidence = minConf

	processEvery, err := getEnvInt("PLATEWATCH_PROCESS_EVERY", cfg.ProcessEvery)
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.ProcessEvery = processEvery

	cfg.OutputDir = getEnv("PLATEWATCH_OUTPUT_DIR", cfg.OutputDir)
	cfg.MonitorAddr = getEnv("PLATEWATCH_MONITOR_ADDR", cfg.MonitorAddr)
	cfg.RecognizerURL = getEnv("PLATEWATCH_RECOGNIZER_URL", cfg.RecognizerURL)
	cfg.LogLevel = getEnv("PLATEWATCH_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("PLATEWATCH_LOG_FORMAT", cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate fails fast before any detections are processed.
func (c Config) Validate() error {
	if c.DuplicateWindow < 0 {
		return fmt.Errorf("%w: duplicate window must not be negative, got %s", ErrInvalidConfig, c.DuplicateWindow)
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("%w: min confidence must be in [0,1], got %g", ErrInvalidConfig, c.MinConfidence)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: output dir must not be empty", ErrInvalidConfig)
	}
	if c.ProcessEvery < 1 {
		return fmt.Errorf("%w: process every must be at least 1, got %d", ErrInvalidConfig, c.ProcessEvery)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}
