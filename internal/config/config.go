package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DefaultInterval time.Duration
	DefaultWorkers  int

	FetchTimeout   time.Duration
	UserAgent      string
	SourceThrottle time.Duration

	PGHost     string
	PGPort     int
	PGUser     string
	PGPassword string
	PGDatabase string

	// RedisAddr enables the ingest notification queue when non-empty.
	RedisAddr string
	QueueKey  string

	ControlAddr string
	LogLevel    string
}

func Load() Config {
	return Config{
		DefaultInterval: parseDurationEnv("INGEST_TIMER_INTERVAL", 3*time.Minute),
		DefaultWorkers:  parseIntEnv("INGEST_WORKERS_COUNT", 3),
		FetchTimeout:    parseDurationEnv("FETCH_TIMEOUT", 20*time.Second),
		UserAgent:       getenv("FETCH_USER_AGENT", ""),
		SourceThrottle:  parseDurationEnv("SOURCE_THROTTLE", 30*time.Second),
		PGHost:          getenv("POSTGRES_HOST", "localhost"),
		PGPort:          parseIntEnv("POSTGRES_PORT", 5432),
		PGUser:          getenv("POSTGRES_USER", "postgres"),
		PGPassword:      getenv("POSTGRES_PASSWORD", "changeme"),
		PGDatabase:      getenv("POSTGRES_DBNAME", "newshub"),
		RedisAddr:       getenv("REDIS_ADDR", ""),
		QueueKey:        getenv("INGEST_QUEUE_KEY", ""),
		ControlAddr:     getenv("CONTROL_ADDR", "127.0.0.1:8088"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
