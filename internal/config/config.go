package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv     string
	ServerPort string

	// StorageDriver selects the KV backend: sqlite, postgres,
	// postgres-sqlx, redis or memory.
	StorageDriver string
	SQLitePath    string
	PGHost        string
	PGPort        string
	PGUser        string
	PGPassword    string
	PGDatabase    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	APIKey      string
	TokenSecret string

	RateLimitRPS   float64
	RateLimitBurst int

	AutosaveDebounce time.Duration
}

// Load reads configuration from the environment, with .env autoloading for
// local development.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:     getEnv("APP_ENV", "development"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StorageDriver: getEnv("STORAGE_DRIVER", "sqlite"),
		SQLitePath:    getEnv("SQLITE_PATH", "groundops.db"),
		PGHost:        getEnv("PG_HOST", "localhost"),
		PGPort:        getEnv("PG_PORT", "5432"),
		PGUser:        getEnv("PG_USER", "groundops"),
		PGPassword:    getEnv("PG_PASSWORD", ""),
		PGDatabase:    getEnv("PG_DB", "groundops"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       parseInt(getEnv("REDIS_DB", "0")),

		APIKey:      getEnv("API_KEY", ""),
		TokenSecret: getEnv("TOKEN_SECRET", "dev-only-secret"),

		RateLimitRPS:   parseFloat(getEnv("RATE_LIMIT_RPS", "10")),
		RateLimitBurst: parseInt(getEnv("RATE_LIMIT_BURST", "30")),

		AutosaveDebounce: parseDuration(getEnv("AUTOSAVE_DEBOUNCE", "750ms")),
	}
}

// PostgresDSN assembles the connection string for both Postgres paths.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 750 * time.Millisecond
	}
	return d
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
