package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	// Load environment variables from .env files when present.
	_ "github.com/joho/godotenv/autoload"
)

// Config holds all application configuration. It is created once at startup
// and passed read-only into the constructors that need it.
type Config struct {
	Dirs          DirsConfig
	Database      DatabaseConfig
	Classifier    ClassifierConfig
	Pipeline      PipelineConfig
	Observability ObservabilityConfig
}

// DirsConfig names the inbox and the two archive directories.
type DirsConfig struct {
	Inbox     string
	Processed string
	Error     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ClassifierConfig controls the external classification boundary.
type ClassifierConfig struct {
	APIKey            string
	Model             string
	Workers           int
	RequestTimeout    time.Duration
	RequestsPerSecond float64
}

// PipelineConfig controls per-file retry behavior.
type PipelineConfig struct {
	FileRetries   int
	RetryInterval time.Duration
}

type ObservabilityConfig struct {
	MetricsEnabled bool
	MetricsPort    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Dirs: DirsConfig{
			Inbox:     getEnv("DATA_RAW_DIR", "data/raw"),
			Processed: getEnv("DATA_PROCESSED_DIR", "data/processed"),
			Error:     getEnv("DATA_ERROR_DIR", "data/error"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "finance-tracker"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Classifier: ClassifierConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Workers:           getEnvAsInt("CLASSIFIER_WORKERS", 4),
			RequestTimeout:    getEnvAsDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
			RequestsPerSecond: getEnvAsFloat("CLASSIFIER_RPS", 5),
		},
		Pipeline: PipelineConfig{
			FileRetries:   getEnvAsInt("PIPELINE_FILE_RETRIES", 2),
			RetryInterval: getEnvAsDuration("PIPELINE_RETRY_INTERVAL", 2*time.Second),
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", false),
			MetricsPort:    getEnvAsInt("METRICS_PORT", 9090),
		},
	}

	if cfg.Classifier.Workers < 1 {
		cfg.Classifier.Workers = 1
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
