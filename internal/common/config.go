package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Storage    StorageConfig
	AI         AIConfig
	Extraction ExtractionConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string
}

// StorageConfig holds object-storage (S3-compatible) configuration
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// AIConfig holds inference-API configuration for summary and sentiment models
type AIConfig struct {
	BaseURL        string
	APIKey         string
	SummaryModel   string
	SentimentModel string
	Timeout        time.Duration
}

// ExtractionConfig holds text-recognition configuration for image inputs
type ExtractionConfig struct {
	VisionEndpoint string
	VisionAPIKey   string
	Timeout        time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:    getEnv("STORAGE_BUCKET", "documents"),
			UseSSL:    getEnvAsBool("STORAGE_USE_SSL", false),
		},
		AI: AIConfig{
			BaseURL:        getEnv("AI_BASE_URL", "https://api-inference.huggingface.co/models/"),
			APIKey:         getEnv("AI_API_KEY", ""),
			SummaryModel:   getEnv("AI_SUMMARY_MODEL", "google/flan-t5-base"),
			SentimentModel: getEnv("AI_SENTIMENT_MODEL", "distilbert-base-uncased-finetuned-sst-2-english"),
			Timeout:        getEnvAsDuration("AI_TIMEOUT", 45*time.Second),
		},
		Extraction: ExtractionConfig{
			VisionEndpoint: getEnv("VISION_ENDPOINT", ""),
			VisionAPIKey:   getEnv("VISION_API_KEY", ""),
			Timeout:        getEnvAsDuration("VISION_TIMEOUT", 30*time.Second),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Storage.Endpoint == "" {
		return NewAppError("CONFIG_ERROR", "STORAGE_ENDPOINT is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
