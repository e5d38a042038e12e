package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// SourceConfig describes where a StateSnapshot document comes from: either
// a local file under DataPath, or a remote HTTP endpoint with bearer-token
// or cookie auth. Exactly one of the two shapes is meaningful at a time;
// internal/source picks based on whether URL is set.
type SourceConfig struct {
	URL          string
	AuthToken    string
	AuthCookie   string
	RequestDelay time.Duration
	LocalFile    string
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Source   SourceConfig
	DataPath string
	LogDir   string
	CacheDir string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory (useful for development/go run)
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	cacheDir := filepath.Join(dataPath, "cache")

	// Ensure directories exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", cacheDir).Msg("Failed to create cache directory")
	}

	delaySecs, _ := strconv.Atoi(getEnv("SOURCE_REQUEST_DELAY_SECONDS", "0"))

	localFile := getEnv("SNAPSHOT_FILE", filepath.Join(dataPath, "snapshot.json"))

	cfg := &AppConfig{
		Source: SourceConfig{
			URL:          getEnv("SNAPSHOT_URL", ""),
			AuthToken:    getEnv("SNAPSHOT_AUTH_TOKEN", ""),
			AuthCookie:   getEnv("SNAPSHOT_AUTH_COOKIE", ""),
			RequestDelay: time.Duration(delaySecs) * time.Second,
			LocalFile:    localFile,
		},
		DataPath: dataPath,
		LogDir:   logDir,
		CacheDir: cacheDir,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

