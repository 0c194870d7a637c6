package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Source kinds accepted by GAS_CHART_SOURCE.
const (
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
	SourceSample = "sample"
)

const DefaultDBPath = "./data/gas_dashboard.sqlite3"

// LoadDotEnv loads an optional .env file from the working directory.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvLowerOrDefault(key, defaultVal string) string {
	return strings.ToLower(strings.TrimSpace(getEnvOrDefault(key, defaultVal)))
}
