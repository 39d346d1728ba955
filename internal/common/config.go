package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Storage StorageConfig
	Fetch   FetchConfig
	LLM     LLMConfig
}

// StorageConfig holds DynamoDB-related configuration
type StorageConfig struct {
	TableName string
	Region    string
}

// FetchConfig holds document-download configuration
type FetchConfig struct {
	Timeout time.Duration
}

// LLMConfig holds extraction-call configuration
type LLMConfig struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Backoff     time.Duration
	RatePerMin  int
	Temperature float32
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			TableName: getEnv("DDB_TABLE_NAME", "products"),
			Region:    getEnv("AWS_REGION", "us-east-1"),
		},
		Fetch: FetchConfig{
			Timeout: getEnvAsDuration("FETCH_TIMEOUT", 25*time.Second),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Model:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Timeout:     getEnvAsDuration("EXTRACT_TIMEOUT", 120*time.Second),
			MaxRetries:  getEnvAsInt("EXTRACT_MAX_RETRIES", 3),
			Backoff:     getEnvAsDuration("EXTRACT_BACKOFF", 2*time.Second),
			RatePerMin:  getEnvAsInt("EXTRACT_RATE_PER_MIN", 10),
			Temperature: getEnvAsFloat32("EXTRACT_TEMPERATURE", 0.0),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrExtractionFatal)
	}
	if c.Storage.TableName == "" {
		return NewAppError("CONFIG_ERROR", "DDB_TABLE_NAME is required", ErrStorage)
	}
	return nil
}
