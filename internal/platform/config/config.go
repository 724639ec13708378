package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config captures everything the server needs from the environment.
type Config struct {
	Addr        string
	Env         string // "dev" or "prod", controls log format
	DatabaseURL string // empty means in-memory stores (local dev)
	Redis       RedisConfig

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	EntryCooldown time.Duration

	LockoutThreshold int
	LockoutWindow    time.Duration

	ResetTokenTTL time.Duration
}

// RedisConfig holds connection settings for the optional Redis instance.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		Addr:        getEnv("CLUBDESK_ADDR", ":8080"),
		Env:         getEnv("CLUBDESK_ENV", "dev"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		// Default must be overridden in production.
		JWTSigningKey: getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		JWTIssuer:     getEnv("JWT_ISSUER", "clubdesk"),
		TokenTTL:      getEnvDuration("TOKEN_TTL", 30*24*time.Hour),

		EntryCooldown: getEnvDuration("ENTRY_COOLDOWN", 10*time.Minute),

		LockoutThreshold: getEnvInt("LOGIN_LOCKOUT_THRESHOLD", 5),
		LockoutWindow:    getEnvDuration("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),

		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
