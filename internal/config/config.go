// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DataDir           string
	StorePath         string
	StoreBackend      string
	DatabasePath      string
	DownloadDir       string
	LogPath           string
	LogLevel          string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiEndpoint    string
	ImageEndpoint     string
	ImageModel        string
	HTTPTimeout       time.Duration
	DailyCreditLimit  int
	CreditCost        int
	StorageQuotaBytes int64
	Notifications     bool
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	dataDir := getEnvString("PAPERART_DATA_DIR", getDefaultDataDir())

	cfg := &Config{
		DataDir:           dataDir,
		StorePath:         getEnvString("STORE_PATH", filepath.Join(dataDir, "storage.json")),
		StoreBackend:      strings.ToLower(getEnvString("STORE_BACKEND", defaultStoreBackend)),
		DatabasePath:      getEnvString("DATABASE_PATH", filepath.Join(dataDir, "paperart.db")),
		DownloadDir:       getEnvString("DOWNLOAD_DIR", getDefaultDownloadDir()),
		LogPath:           getEnvString("LOG_PATH", filepath.Join(dataDir, "paperart.log")),
		LogLevel:          getEnvString("LOG_LEVEL", defaultLogLevel),
		GeminiAPIKey:      getEnvString("GEMINI_API_KEY", ""),
		GeminiModel:       getEnvString("GEMINI_MODEL", defaultGeminiModel),
		GeminiEndpoint:    getEnvString("GEMINI_ENDPOINT", defaultGeminiEndpoint),
		ImageEndpoint:     getEnvString("IMAGE_ENDPOINT", defaultImageEndpoint),
		ImageModel:        getEnvString("IMAGE_MODEL", defaultImageModel),
		HTTPTimeout:       getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		DailyCreditLimit:  getEnvInt("DAILY_CREDIT_LIMIT", DefaultDailyCreditLimit),
		CreditCost:        getEnvInt("CREDIT_COST", DefaultCreditCost),
		StorageQuotaBytes: int64(getEnvInt("STORAGE_QUOTA_BYTES", defaultStorageQuotaBytes)),
		Notifications:     getEnvBool("DESKTOP_NOTIFICATIONS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, dir := range []string{
		cfg.DataDir,
		filepath.Dir(cfg.StorePath),
		filepath.Dir(cfg.DatabasePath),
	} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required (set via env or .env file)")
	}
	if c.StoreBackend != "file" && c.StoreBackend != "sqlite" {
		return fmt.Errorf("STORE_BACKEND must be \"file\" or \"sqlite\", got %q", c.StoreBackend)
	}
	if c.DailyCreditLimit <= 0 {
		return fmt.Errorf("DAILY_CREDIT_LIMIT must be positive, got %d", c.DailyCreditLimit)
	}
	if c.CreditCost <= 0 || c.CreditCost > c.DailyCreditLimit {
		return fmt.Errorf("CREDIT_COST must be between 1 and %d, got %d", c.DailyCreditLimit, c.CreditCost)
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, "."+appDirName, ".env"),
		)
	}

	return paths
}

// getDefaultDataDir returns the default directory for local data.
func getDefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + appDirName
	}
	return filepath.Join(home, ".config", appDirName)
}

// getDefaultDownloadDir returns where downloaded artwork goes.
func getDefaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Pictures", appDirName)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
