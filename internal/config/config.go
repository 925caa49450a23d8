// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// placeholder marks a setting copied from the sample .env but never filled in.
const placeholder = "YOUR_"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Comma-separated CIDRs of reverse proxies whose X-Forwarded-For is trusted
	TrustedProxies string

	// Logging
	LogLevel string
	LogFile  string // optional rotated log file

	// Local store
	LocalDBPath string

	// Remote document store: "", "memory", "postgres" or "mongo"
	RemoteDriver  string
	RemoteTimeout time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MongoURI      string
	MongoDatabase string

	// Valkey (Redis-compatible): sessions and page cache
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	PageCacheTTL   time.Duration

	// Image storage: "", "s3" or "minio"
	StorageDriver string

	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3PublicURL string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOPublicURL string

	// Site owner
	AdminEmail        string
	AdminPasswordHash string
	AdminDisplayName  string
	Admin2FA          bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is read first if present; real environment variables win over it.
// Returns an error if critical values are missing in production mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		TrustedProxies: os.Getenv("TRUSTED_PROXIES"),

		LogLevel: envOrDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),

		LocalDBPath: envOrDefault("LOCAL_DB_PATH", "data/devfolio.db"),

		RemoteDriver: strings.ToLower(os.Getenv("REMOTE_DRIVER")),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "devfolio"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "devfolio"),

		MongoURI:      envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: envOrDefault("MONGO_DATABASE", "devfolio"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		StorageDriver: strings.ToLower(os.Getenv("STORAGE_DRIVER")),

		S3Endpoint:  os.Getenv("S3_ENDPOINT"),
		S3Region:    envOrDefault("S3_REGION", "us-east-1"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		S3Bucket:    envOrDefault("S3_BUCKET", "devfolio-public"),
		S3PublicURL: os.Getenv("S3_PUBLIC_URL"),

		MinIOEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:    envOrDefault("MINIO_BUCKET", "devfolio"),
		MinIOPublicURL: os.Getenv("MINIO_PUBLIC_URL"),

		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminDisplayName:  envOrDefault("ADMIN_DISPLAY_NAME", "Site Owner"),
	}

	var err error
	if cfg.RemoteTimeout, err = durationOrDefault("REMOTE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.PageCacheTTL, err = durationOrDefault("PAGE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.MinIOUseSSL, err = boolOrDefault("MINIO_USE_SSL", false); err != nil {
		return nil, err
	}
	if cfg.Admin2FA, err = boolOrDefault("ADMIN_2FA", true); err != nil {
		return nil, err
	}

	switch cfg.RemoteDriver {
	case "", "memory", "postgres", "mongo":
	default:
		return nil, fmt.Errorf("unknown REMOTE_DRIVER %q", cfg.RemoteDriver)
	}
	switch cfg.StorageDriver {
	case "", "s3", "minio":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.RemoteDriver != "" && cfg.remotePlaceholder() {
		slog.Warn("remote store settings are placeholders, running local-only", "driver", cfg.RemoteDriver)
		cfg.RemoteDriver = ""
	}

	if cfg.Env == "production" {
		if cfg.AdminPasswordHash == "" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
		if cfg.RemoteDriver == "postgres" && cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

// remotePlaceholder reports whether any setting of the selected remote
// driver still holds a sample value.
func (c *Config) remotePlaceholder() bool {
	var values []string
	switch c.RemoteDriver {
	case "postgres":
		values = []string{c.DBHost, c.DBUser, c.DBPassword, c.DBName}
	case "mongo":
		values = []string{c.MongoURI, c.MongoDatabase}
	}
	for _, v := range values {
		if strings.Contains(v, placeholder) {
			return true
		}
	}
	return false
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, c.DBPort), c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func boolOrDefault(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
