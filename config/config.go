package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string
	BaseURL    string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	MigrationsDir string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage
	S3BucketName string
	AWSRegion    string
	MediaRoot    string
	MediaURL     string

	CORSAllowedOrigins []string
	PageSize           int

	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	switch env {
	case Development, Test:
		// A missing .env is fine; the environment may already be populated.
		_ = godotenv.Load()
	case CI, Production:
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	cfg, err := load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment) (*Config, error) {
	defaults := developmentDefaults
	if env == Production {
		defaults = map[string]string{}
	}
	get := func(key string) string {
		return lookup(key, defaults[key])
	}

	cfg := &Config{
		ServerPort:    get("SERVER_PORT"),
		ServerHost:    get("SERVER_HOST"),
		BaseURL:       get("BASE_URL"),
		DBDriver:      get("DB_DRIVER"),
		DBHost:        get("DB_HOST"),
		DBPort:        get("DB_PORT"),
		DBUser:        get("DB_USER"),
		DBPassword:    get("DB_PASSWORD"),
		DBName:        get("DB_NAME"),
		DBSSLMode:     get("DB_SSL_MODE"),
		MigrationsDir: get("MIGRATIONS_DIR"),
		RedisHost:     get("REDIS_HOST"),
		RedisPort:     get("REDIS_PORT"),
		RedisPassword: get("REDIS_PASSWORD"),
		RedisURL:      get("REDIS_URL"),
		JWTSecret:     get("JWT_SECRET"),
		S3BucketName:  get("S3_BUCKET_NAME"),
		AWSRegion:     get("AWS_REGION"),
		MediaRoot:     get("MEDIA_ROOT"),
		MediaURL:      get("MEDIA_URL"),
		LogLevel:      get("LOG_LEVEL"),
		LogFormat:     get("LOG_FORMAT"),
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "postgres"
	}

	var err error
	if cfg.RedisDB, err = atoiOr(get("REDIS_DB"), 0); err != nil {
		return nil, fmt.Errorf("REDIS_DB: %w", err)
	}
	if cfg.PageSize, err = atoiOr(get("PAGE_SIZE"), 6); err != nil {
		return nil, fmt.Errorf("PAGE_SIZE: %w", err)
	}

	ttl := get("TOKEN_TTL")
	if ttl == "" {
		ttl = "24h"
	}
	if cfg.TokenTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("TOKEN_TTL: %w", err)
	}

	for _, origin := range strings.Split(get("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

var developmentDefaults = map[string]string{
	"SERVER_PORT":          "8080",
	"SERVER_HOST":          "0.0.0.0",
	"BASE_URL":             "http://localhost:8080",
	"DB_DRIVER":            "postgres",
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_NAME":              "foodgram",
	"DB_SSL_MODE":          "disable",
	"MIGRATIONS_DIR":       "migrations",
	"REDIS_HOST":           "localhost",
	"REDIS_PORT":           "6379",
	"MEDIA_ROOT":           "media",
	"MEDIA_URL":            "/media",
	"CORS_ALLOWED_ORIGINS": "http://localhost:3000",
	"LOG_LEVEL":            "debug",
	"LOG_FORMAT":           "console",
}

// lookup returns the environment variable, then the Docker secret named after it
// in lower case, then the fallback.
func lookup(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := readSecret(strings.ToLower(key)); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func atoiOr(s string, fallback int) (int, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.Atoi(s)
}

// DSN returns the gorm connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}
