package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads the .env file named by LIMIER_ENV (default .env). All config is
// flat env vars read via os.Getenv after loading; a missing file is fine.
func Load() {
	envFile := os.Getenv("LIMIER_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
}

// DatabaseURL returns the Postgres connection string for the graph store.
// Empty means the in-memory store is used.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// RedisAddr returns the Redis address for the action historian. Empty means
// history publishing is disabled.
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

// RedisPassword returns the Redis password, empty for none.
func RedisPassword() string {
	return os.Getenv("REDIS_PASSWORD")
}

// LogLevel parses LOG_LEVEL into a logrus level, defaulting to info.
func LogLevel() logrus.Level {
	lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
