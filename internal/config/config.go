package config

import (
	"math"
	"os"
	"strconv"
	"time"

	"medibot/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Dataset  DatasetConfig
	Eval     EvalConfig
	Server   ServerConfig
	Database DatabaseConfig
	Backend  BackendConfig
	LogLevel string
}

// DatasetConfig points at the labeled symptom dataset
type DatasetConfig struct {
	Path      string
	Delimiter string
}

// EvalConfig holds evaluation run defaults
type EvalConfig struct {
	TestFraction float64
	Seed         int64
	TopK         int
	SweepSeeds   int
	SweepWorkers int

	// upper bounds for a single sweep request
	SweepMaxSeeds   int
	SweepMaxWorkers int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds the optional run archive connection
type DatabaseConfig struct {
	URL string
}

// BackendConfig holds the optional remote predictor settings
type BackendConfig struct {
	URL     string
	Timeout time.Duration
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Dataset: DatasetConfig{
			Path:      getEnvOrDefault("DATASET_PATH", ""),
			Delimiter: getEnvOrDefault("DATASET_DELIMITER", ","),
		},
		Eval: EvalConfig{
			TestFraction: getEnvFloatOrDefault("TEST_FRACTION", 0.2),
			Seed:         getEnvInt64OrDefault("SEED", 42),
			TopK:         getEnvIntOrDefault("TOP_K", 3),
			SweepSeeds:   getEnvIntOrDefault("SWEEP_SEEDS", 5),
			SweepWorkers: getEnvIntOrDefault("SWEEP_WORKERS", 4),

			SweepMaxSeeds:   getEnvIntOrDefault("SWEEP_MAX_SEEDS", 100),
			SweepMaxWorkers: getEnvIntOrDefault("SWEEP_MAX_WORKERS", 16),
		},
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Backend: BackendConfig{
			URL:     getEnvOrDefault("DIAGNOSIS_BACKEND_URL", ""),
			Timeout: getEnvDurationOrDefault("DIAGNOSIS_BACKEND_TIMEOUT", 5*time.Second),
		},
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := Validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks value ranges; the dataset path is checked by the server entry point.
func Validate(config *Config) error {
	if math.IsNaN(config.Eval.TestFraction) || config.Eval.TestFraction <= 0 || config.Eval.TestFraction >= 1 {
		return errors.ConfigInvalid("TEST_FRACTION must be in (0,1)")
	}
	if len(config.Dataset.Delimiter) != 1 {
		return errors.ConfigInvalid("DATASET_DELIMITER must be a single character")
	}
	if config.Eval.TopK < 1 {
		return errors.ConfigInvalid("TOP_K must be positive")
	}
	if config.Eval.SweepSeeds < 1 || config.Eval.SweepWorkers < 1 {
		return errors.ConfigInvalid("SWEEP_SEEDS and SWEEP_WORKERS must be positive")
	}
	if config.Eval.SweepSeeds > config.Eval.SweepMaxSeeds {
		return errors.ConfigInvalid("SWEEP_SEEDS must not exceed SWEEP_MAX_SEEDS")
	}
	if config.Eval.SweepWorkers > config.Eval.SweepMaxWorkers {
		return errors.ConfigInvalid("SWEEP_WORKERS must not exceed SWEEP_MAX_WORKERS")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
