package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded once at startup.
type Config struct {
	AppPort string

	// game rules; zero disables the feature
	MaxRoundsBeforeWinner int
	TimebankSeconds       int

	AllowedOrigin string
	RedisAddr     string
	RedisPassword string

	LogLevel  string
	LogFormat string
}

// Load reads the environment (honoring a local .env file) and applies
// defaults.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:               envOr("APP_PORT", "8080"),
		MaxRoundsBeforeWinner: envInt("MAX_ROUNDS_BEFORE_WINNER", 0),
		TimebankSeconds:       envInt("TIMEBANK_SECONDS", 0),
		AllowedOrigin:         os.Getenv("ALLOWED_ORIGIN"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		LogLevel:              envOr("LOG_LEVEL", "info"),
		LogFormat:             os.Getenv("LOG_FORMAT"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
