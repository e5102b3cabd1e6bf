// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"itinerary_parser/internal/storage"
)

// Config holds all configuration for the leg API and ingest workers.
type Config struct {
	// Parsing
	DefaultTimezone string

	// Server
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AuthEnabled  bool
	APIKeys      []string
	LogLevel     string

	// Storage
	Store storage.Config

	// ClickHouse audit; disabled when Host is empty.
	ClickHouse storage.ClickHouseConfig

	// NATS ingest; disabled when URL is empty.
	NATSURL     string
	NATSSubject string
}

// Load reads a .env file if present and then the environment. A missing .env
// is fine; an unreadable or malformed one is an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	store := storage.DefaultConfig()
	store.Driver = getEnv("STORE_DRIVER", store.Driver)
	store.SQLitePath = getEnv("SQLITE_PATH", store.SQLitePath)
	store.Postgres.Host = getEnv("POSTGRES_HOST", store.Postgres.Host)
	store.Postgres.Port = getEnvAsInt("POSTGRES_PORT", store.Postgres.Port)
	store.Postgres.Database = getEnv("POSTGRES_DATABASE", store.Postgres.Database)
	store.Postgres.User = getEnv("POSTGRES_USER", store.Postgres.User)
	store.Postgres.Password = getEnv("POSTGRES_PASSWORD", store.Postgres.Password)

	cfg := &Config{
		DefaultTimezone: getEnv("LEG_DEFAULT_TIMEZONE", "America/New_York"),

		Port:         getEnvAsInt("PORT", 8080),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,
		AuthEnabled:  getEnvAsBool("API_AUTH", false),
		APIKeys:      getEnvAsList("API_KEYS"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),

		Store: store,

		ClickHouse: storage.ClickHouseConfig{
			Host:     getEnv("CLICKHOUSE_HOST", ""),
			Port:     getEnvAsInt("CLICKHOUSE_PORT", 9000),
			Database: getEnv("CLICKHOUSE_DATABASE", "default"),
			User:     getEnv("CLICKHOUSE_USER", "default"),
			Password: getEnv("CLICKHOUSE_PASSWORD", ""),
		},

		NATSURL:     getEnv("NATS_URL", ""),
		NATSSubject: getEnv("NATS_SUBJECT", "itinerary.paste"),
	}

	return cfg, nil
}

// AuditEnabled reports whether a ClickHouse host is configured.
func (c *Config) AuditEnabled() bool {
	return c.ClickHouse.Host != ""
}

// IngestEnabled reports whether a NATS URL is configured.
func (c *Config) IngestEnabled() bool {
	return c.NATSURL != ""
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
