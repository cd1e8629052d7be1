package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds every setting the server reads from the environment
type Config struct {
	ServerPort string
	LogLevel   slog.Level

	// Session tokens
	JWTSecret string
	JWTIssuer string

	InitialAdminEmail string

	// Image storage
	StorageBackend string
	UploadsDir     string
	S3             S3Config
	MaxImageBytes  int64

	// Redis, empty address disables caching and rate limiting
	RedisAddr        string
	ProjectCacheTTL  time.Duration
	SigninRateLimit  int
	SigninRatePeriod time.Duration

	// Proxies whose X-Forwarded-For is believed; empty trusts none
	TrustedProxies []string
}

// S3Config describes an S3-compatible bucket
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// LoadConfig reads the application configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          parseLevel(getEnv("LOG_LEVEL", "info")),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTIssuer:         getEnv("JWT_ISSUER", ""),
		InitialAdminEmail: strings.ToLower(strings.TrimSpace(getEnv("INITIAL_ADMIN_EMAIL", ""))),
		StorageBackend:    strings.ToLower(getEnv("STORAGE_BACKEND", StorageLocal)),
		UploadsDir:        getEnv("UPLOADS_DIR", "uploads"),
		S3: S3Config{
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  getEnv("S3_ENDPOINT", ""),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		MaxImageBytes:    int64(getIntEnv("MAX_IMAGE_BYTES", 1000)),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		ProjectCacheTTL:  time.Duration(getIntEnv("PROJECT_CACHE_TTL_SEC", 60)) * time.Second,
		SigninRateLimit:  getIntEnv("SIGNIN_RATE_LIMIT", 10),
		SigninRatePeriod: time.Duration(getIntEnv("SIGNIN_RATE_PERIOD_SEC", 60)) * time.Second,
		TrustedProxies:   getListEnv("TRUSTED_PROXIES"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET not set in environment")
	}

	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageS3:
		if cfg.S3.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET must be set when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q (want %q or %q)", cfg.StorageBackend, StorageLocal, StorageS3)
	}

	if cfg.MaxImageBytes <= 0 {
		return nil, fmt.Errorf("MAX_IMAGE_BYTES must be positive, got %d", cfg.MaxImageBytes)
	}

	for _, proxy := range cfg.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
			}
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", valueStr, "default", defaultValue)
		return defaultValue
	}
	return value
}

// getListEnv splits a comma separated variable, dropping empty items
func getListEnv(key string) []string {
	var items []string
	for _, item := range strings.Split(getEnv(key, ""), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}
