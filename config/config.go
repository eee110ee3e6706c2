package config

import (
	"errors"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL  string
	RedisAddr    string
	JWTSecret    []byte
	GeminiAPIKey string
	Port         string
	TokenTTL     int64 // seconds
}

// LoadConfig reads configuration from the environment. GEMINI_API_KEY may be
// absent: the assistant relay reports a configuration error at request time
// while the rest of the app keeps running.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		JWTSecret:    []byte(os.Getenv("JWT_SECRET")),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		Port:         "8080",
		TokenTTL:     24 * 60 * 60,
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if len(cfg.JWTSecret) == 0 {
		return nil, errors.New("JWT_SECRET is required")
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if ttlStr := os.Getenv("TOKEN_TTL_SECONDS"); ttlStr != "" {
		if ttl, err := strconv.ParseInt(ttlStr, 10, 64); err == nil && ttl > 0 {
			cfg.TokenTTL = ttl
		}
	}

	return cfg, nil
}
