package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// Config holds every setting the process reads from the environment.
type Config struct {
	Port int
	Env  string

	LogLevel string

	DB    DBConfig
	Auth  AuthConfig
	Redis RedisConfig

	CORSOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
	MaxConns int32
}

type AuthConfig struct {
	JWTSecret    []byte
	TokenTTL     time.Duration
	CookieDomain string
	CookieSecure bool
}

// RedisConfig is optional. An empty Addr selects the in-memory token blacklist.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

var requiredVars = []string{"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_DATABASE"}

// Load reads the configuration. Missing database variables are reported together.
func Load() (*Config, error) {
	var missing []string
	for _, name := range requiredVars {
		if os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	port, err := intEnv("PORT", 8080)
	if err != nil {
		return nil, err
	}
	maxConns, err := intEnv("DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}
	ttlSeconds, err := intEnv("TOKEN_SECONDS_EXP", 3600)
	if err != nil {
		return nil, err
	}
	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	env := stringEnv("APP_ENV", "dev")
	if secret == "" {
		if env == "prod" {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in prod")
		}
		secret = "dev-secret-change-me"
	}

	return &Config{
		Port:     port,
		Env:      env,
		LogLevel: stringEnv("LOG_LEVEL", "info"),
		DB: DBConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_DATABASE"),
			Schema:   stringEnv("DB_SCHEMA", "public"),
			MaxConns: int32(maxConns),
		},
		Auth: AuthConfig{
			JWTSecret:    []byte(secret),
			TokenTTL:     time.Duration(ttlSeconds) * time.Second,
			CookieDomain: os.Getenv("COOKIE_DOMAIN"),
			CookieSecure: os.Getenv("COOKIE_SECURE") == "true",
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		CORSOrigins: listEnv("CORS_ORIGINS", []string{"http://127.0.0.1:5500"}),
	}, nil
}

func stringEnv(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}

func intEnv(name string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
	}
	return v, nil
}

func listEnv(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
