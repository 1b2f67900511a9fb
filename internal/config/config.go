package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration.
// Every value is read from environment variables (see .env for local runs).
type Config struct {
	App    AppConfig
	Redis  RedisConfig
	JWT    JWTConfig
	MinIO  MinIOConfig
	Upload UploadConfig
	CORS   CORSConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	// MigrationsEnabled applies the embedded SQL migrations on startup.
	MigrationsEnabled bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type MinIOConfig struct {
	Endpoint  string // localhost:9000
	AccessKey string // minioadmin
	SecretKey string // minioadmin
	Bucket    string // staff-directory
	UseSSL    bool   // false for local
	// PublicBaseURL overrides the host used in stored image URLs (CDN, reverse proxy).
	PublicBaseURL string
}

// UploadConfig bounds the employee photos accepted by the API.
type UploadConfig struct {
	MaxBytes     int64
	MaxDimension int
	Folder       string

	// OrphanLedgerKey is the Redis key of the unreleased image ledger.
	OrphanLedgerKey string
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:              getEnv("APP_NAME", "Staff Directory API"),
			Environment:       getEnv("APP_ENV", "development"),
			Port:              getEnv("APP_PORT", "8080"),
			Version:           getEnv("APP_VERSION", "1.0.0"),
			MigrationsEnabled: getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:    getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTTL: getEnvDuration("JWT_ACCESS_TTL", 24*time.Hour),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:     getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:        getEnv("MINIO_BUCKET", "staff-directory"),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PublicBaseURL: getEnv("MINIO_PUBLIC_BASE_URL", ""),
		},
		Upload: UploadConfig{
			MaxBytes:        int64(getEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
			MaxDimension:    getEnvInt("UPLOAD_MAX_DIMENSION", 800),
			Folder:          getEnv("UPLOAD_FOLDER", "employees"),
			OrphanLedgerKey: getEnv("ORPHAN_LEDGER_KEY", "directory:orphaned_images"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that would make the service unsafe or unusable.
func (c *Config) Validate() error {
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Upload.MaxDimension <= 0 {
		return fmt.Errorf("UPLOAD_MAX_DIMENSION must be positive")
	}
	if c.MinIO.Bucket == "" {
		return fmt.Errorf("MINIO_BUCKET must be set")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.MinIO.AccessKey == "minioadmin" {
			fmt.Println("WARNING: MinIO is using default credentials")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
