package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries everything the process reads from its environment.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	// RedisAddr enables the notification queue and the cross-instance event
	// mirror. Empty means single-instance mode: in-process fan-out only, no
	// queued notifications.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret string

	// Location ping admission per courier.
	PingRatePerMinute int
	PingRateBurst     int

	// WatchdogStaleness is how long a courier may stay silent before being
	// forced offline.
	WatchdogStaleness time.Duration

	LogFile  string
	LogDebug bool
}

// LoadConfig reads configuration from environment variables, applying
// defaults for everything except database credentials and the JWT secret.
func LoadConfig() (Config, error) {
	config := Config{
		HTTPPort:          envOr("HTTP_PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            envOr("DB_PORT", "5432"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSslMode:         envOr("DB_SSLMODE", "disable"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		LogFile:           os.Getenv("LOG_FILE"),
		LogDebug:          os.Getenv("LOG_DEBUG") == "true",
		WatchdogStaleness: 10 * time.Minute,
		PingRatePerMinute: 12,
		PingRateBurst:     5,
	}

	for _, required := range []struct{ name, value string }{
		{"DB_HOST", config.DBHost},
		{"DB_USER", config.DBUser},
		{"DB_PASSWORD", config.DBPassword},
		{"DB_NAME", config.DBName},
		{"JWT_SECRET", config.JWTSecret},
	} {
		if required.value == "" {
			return Config{}, fmt.Errorf("missing required environment variable %s", required.name)
		}
	}

	var err error
	if config.RedisDB, err = envInt("REDIS_DB", 0); err != nil {
		return Config{}, err
	}
	if config.PingRatePerMinute, err = envInt("PING_RATE_PER_MINUTE", config.PingRatePerMinute); err != nil {
		return Config{}, err
	}
	if config.PingRateBurst, err = envInt("PING_RATE_BURST", config.PingRateBurst); err != nil {
		return Config{}, err
	}
	if raw := os.Getenv("WATCHDOG_STALENESS"); raw != "" {
		if config.WatchdogStaleness, err = time.ParseDuration(raw); err != nil {
			return Config{}, fmt.Errorf("invalid WATCHDOG_STALENESS: %w", err)
		}
	}

	return config, nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
