package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config carries everything main wires together. Values come from the
// environment, with a .env file as fallback for local runs.
type Config struct {
	ListenAddr string

	// SQLite is used unless DBHost is set, then PostgreSQL.
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	SessionKey    string
	MediaRoot     string
	PerPage       int
	IndexCacheTTL time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Debug("no .env file loaded")
	}

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		DBPath:        getEnv("DATABASE", "yatube.db"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        getEnv("DB_NAME", "yatube"),
		SessionKey:    getEnv("SESSION_KEY", "SESSION_KEY"),
		MediaRoot:     getEnv("MEDIA_ROOT", "media"),
		PerPage:       getEnvInt("POSTS_ON_PAGE", 10),
		IndexCacheTTL: time.Duration(getEnvInt("INDEX_CACHE_SECONDS", 20)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
