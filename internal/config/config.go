package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	S3       S3Config
	OTEL     OTELConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	MaxUploadSizeMB int64
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret      string
	ExpiryHours int64
}

// RazorpayConfig holds payment gateway credentials. Empty credentials switch
// the application to the mock gateway.
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
	BaseURL   string
}

// S3Config holds S3-compatible object storage configuration for menu images
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// OTELConfig holds OpenTelemetry export configuration
type OTELConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	Endpoint       string
	InstanceID     string
	Token          string
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			MaxUploadSizeMB: getEnvAsInt64("MAX_UPLOAD_SIZE_MB", 5),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "payals_kitchen"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			ExpiryHours: getEnvAsInt64("JWT_EXPIRY_HOURS", 24),
		},
		Razorpay: RazorpayConfig{
			KeyID:     getEnv("RAZORPAY_KEY_ID", ""),
			KeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   getEnv("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		},
		S3: S3Config{
			Endpoint:  getEnv("S3_ENDPOINT", "http://localhost:8333"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Bucket:    getEnv("S3_BUCKET", "menu-images"),
			AccessKey: getEnv("S3_ACCESS_KEY", "any"),
			SecretKey: getEnv("S3_SECRET_KEY", "any"),
		},
		OTEL: OTELConfig{
			Enabled:        getEnv("OTEL_ENABLED", "false") == "true",
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "payals-kitchen"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
