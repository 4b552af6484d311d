package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

type envConfig struct {
	// server config
	APP_PORT             string
	MAX_UPLOAD_BYTES     int
	SESSION_IDLE_TIMEOUT time.Duration
	// analysis config
	STATUS_COLUMN    string
	SECONDARY_COLUMN string
	FTE_MIN          float64
	FTE_MAX          float64
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env when present and fills DefaultEnvConfig from the
// environment.
func LoadEnvConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "8080"),
		MAX_UPLOAD_BYTES:     getEnvInt("MAX_UPLOAD_BYTES", 20<<20),
		SESSION_IDLE_TIMEOUT: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		STATUS_COLUMN:        getEnvString("STATUS_COLUMN", "Giugno '25 - In/Out"),
		SECONDARY_COLUMN:     getEnvString("SECONDARY_COLUMN", "L1: Capability/Function"),
		FTE_MIN:              getEnvFloat("FTE_MIN", 0),
		FTE_MAX:              getEnvFloat("FTE_MAX", 3),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
	}
	return nil
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
