package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings of the command line tool.
type Config struct {
	// Single pair
	OriginalPath  string
	AnnotatedPath string

	// Batch: FilesDir for the keyword strategy, OriginalsDir and
	// AnnotatedDir for the ordinal one.
	FilesDir     string
	OriginalsDir string
	AnnotatedDir string
	Strategy     string

	OutputPath string
	ReportPath string

	Options     Options
	PresetName  string
	PresetsPath string

	Kernel     string
	Dilator    string
	Workers    int
	DPI        int
	AutoOrient bool

	Serve bool
}

// IsBatch reports whether the configuration describes a batch run.
func (c *Config) IsBatch() bool {
	return c.FilesDir != "" || c.OriginalsDir != "" || c.AnnotatedDir != ""
}

// ServerConfig configures the HTTP surface. Values come from the environment.
type ServerConfig struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	BatchWorkers       int
}

func (c *ServerConfig) ServerAddress() string {
	return fmt.Sprintf("%s:%s", strings.TrimSpace(c.Host), strings.TrimSpace(c.Port))
}

func LoadServerFromEnv() (*ServerConfig, error) {
	cfg := &ServerConfig{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 2*time.Minute),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 200*1024*1024), // 200MB
		BatchWorkers:       int(parseIntOrDefault("BATCH_WORKERS", 1)),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be > 0 (got %s)", cfg.RequestTimeout)
	}
	if cfg.BatchWorkers < 1 {
		cfg.BatchWorkers = 1
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
