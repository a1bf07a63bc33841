package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends for store snapshots
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// MinSessionSecretLength is the shortest SESSION_SECRET accepted in production
const MinSessionSecretLength = 32

var ErrWeakSessionSecret = errors.New("SESSION_SECRET must be set to at least 32 characters in production")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Store     StoreConfig
	Catalog   CatalogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SessionConfig struct {
	Secret string
	Expiry time.Duration
}

type StoreConfig struct {
	Backend             string // memory, redis or postgres
	KeyPrefix           string // redis key prefix
	SnapshotTTL         time.Duration
	FlushTimeout        time.Duration
	NotificationTimeout time.Duration // default notification display time
}

type CatalogConfig struct {
	Path string // empty uses the bundled catalog
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerWindow int
	Window            time.Duration
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env != "production"
}

// Validate rejects settings the server must not start with. Development may
// leave the session secret empty.
func (c *Config) Validate() error {
	if !c.IsDevelopment() && len(c.Session.Secret) < MinSessionSecretLength {
		return ErrWeakSessionSecret
	}
	return nil
}

// Load reads configuration from a .env file (if present) and the environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not read .env file: %v", err)
	}

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_EXPIRY", "720h")
	viper.SetDefault("STORE_BACKEND", StorageMemory)
	viper.SetDefault("STORE_KEY_PREFIX", "storefront")
	viper.SetDefault("STORE_SNAPSHOT_TTL", "0s")
	viper.SetDefault("STORE_FLUSH_TIMEOUT", "2s")
	viper.SetDefault("STORE_NOTIFICATION_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret: viper.GetString("SESSION_SECRET"),
			Expiry: viper.GetDuration("SESSION_EXPIRY"),
		},
		Store: StoreConfig{
			Backend:             strings.ToLower(viper.GetString("STORE_BACKEND")),
			KeyPrefix:           viper.GetString("STORE_KEY_PREFIX"),
			SnapshotTTL:         viper.GetDuration("STORE_SNAPSHOT_TTL"),
			FlushTimeout:        viper.GetDuration("STORE_FLUSH_TIMEOUT"),
			NotificationTimeout: viper.GetDuration("STORE_NOTIFICATION_TIMEOUT"),
		},
		Catalog: CatalogConfig{
			Path: viper.GetString("CATALOG_PATH"),
		},
		RateLimit: RateLimitConfig{
			Enabled:           viper.GetBool("RATE_LIMIT_ENABLED"),
			RequestsPerWindow: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:            viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
