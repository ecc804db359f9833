// Package config loads runtime settings from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables always win over it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Realtime backends understood by REALTIME_BACKEND.
const (
	RealtimeRedis    = "redis"
	RealtimePostgres = "postgres"
)

type Config struct {
	HTTPAddr        string
	CORSOrigins     []string
	JWTSecret       string
	JWTTTL          time.Duration
	LocalesDir      string
	RealtimeBackend string
	Database        DatabaseConfig
	Redis           RedisConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN renders the keyword/value connection string used by gorm and lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Load reads the configuration. JWT_SECRET is required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          getEnvDuration("JWT_TTL", 72*time.Hour),
		LocalesDir:      os.Getenv("LOCALES_DIR"),
		RealtimeBackend: strings.ToLower(getEnv("REALTIME_BACKEND", RealtimeRedis)),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "complaintdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RealtimeBackend != RealtimeRedis && cfg.RealtimeBackend != RealtimePostgres {
		return nil, fmt.Errorf("REALTIME_BACKEND must be %q or %q, got %q", RealtimeRedis, RealtimePostgres, cfg.RealtimeBackend)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
