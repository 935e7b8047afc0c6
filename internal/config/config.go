package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Relay    RelayConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	ProfileTTL time.Duration
}

type AuthConfig struct {
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey     []byte
	TokenDuration time.Duration
}

// UploadConfig controls where uploaded images land. Backend is "local" or "s3".
type UploadConfig struct {
	Backend     string
	Dir         string
	MaxMemoryMB int64
	S3Bucket    string
	S3Region    string
	S3Endpoint  string // optional, for S3-compatible stores
	S3AccessKey string
	S3SecretKey string
}

type RelayConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// devPasetoKey is the fallback signing key for local development only.
// The original service hard-coded its secret; here it at least lives in
// configuration and can be overridden via PASETO_KEY.
const devPasetoKey = "gemsketch-dev-paseto-key-32bytes"

// Load reads configuration from environment variables.
// A .env file is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "3001"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "gemsketch"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getIntEnv("REDIS_DB", 0),
			ProfileTTL: getDurationEnv("REDIS_PROFILE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			PasetoKey:     []byte(getEnv("PASETO_KEY", devPasetoKey)),
			TokenDuration: getDurationEnv("TOKEN_DURATION", time.Hour),
		},
		Upload: UploadConfig{
			Backend:     getEnv("UPLOAD_BACKEND", "local"),
			Dir:         getEnv("UPLOAD_DIR", "users/uploads"),
			MaxMemoryMB: int64(getIntEnv("UPLOAD_MAX_MEMORY_MB", 10)),
			S3Bucket:    getEnv("UPLOAD_S3_BUCKET", ""),
			S3Region:    getEnv("UPLOAD_S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("UPLOAD_S3_ENDPOINT", ""),
			S3AccessKey: getEnv("UPLOAD_S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("UPLOAD_S3_SECRET_KEY", ""),
		},
		Relay: RelayConfig{
			Endpoint: getEnv("RELAY_ENDPOINT", "http://localhost:5000/process-image"),
			Timeout:  getDurationEnv("RELAY_TIMEOUT", 60*time.Second),
		},
	}

	// Validate PASETO key length (must be 32 bytes for v4.local)
	if len(cfg.Auth.PasetoKey) != 32 {
		return nil, fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(cfg.Auth.PasetoKey))
	}

	if cfg.Upload.Backend != "local" && cfg.Upload.Backend != "s3" {
		return nil, fmt.Errorf("UPLOAD_BACKEND must be local or s3, got %q", cfg.Upload.Backend)
	}
	if cfg.Upload.Backend == "s3" && cfg.Upload.S3Bucket == "" {
		return nil, fmt.Errorf("UPLOAD_S3_BUCKET is required when UPLOAD_BACKEND=s3")
	}

	return cfg, nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
