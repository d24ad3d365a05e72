// Package config reads runtime configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abunai/impact/internal/model"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	Addr           string
	CaseStudiesDir string

	// Run persistence. Empty disables it.
	DBPath string

	// Logging. An empty LogFile logs to stderr only.
	LogFile  string
	LogLevel slog.Level

	// Analysis
	MaxSequences int
	Parallel     bool
	RunTimeout   time.Duration
}

// Load reads configuration from environment variables.
// Malformed numeric or duration values fall back to their defaults.
func Load() Config {
	return Config{
		Addr:           getEnv("ABUNAI_ADDR", ":2406"),
		CaseStudiesDir: getEnv("ABUNAI_CASESTUDIES_DIR", "casestudies"),

		DBPath: getEnv("ABUNAI_DB", ""),

		LogFile:  getEnv("ABUNAI_LOG_FILE", ""),
		LogLevel: parseLogLevel(getEnv("ABUNAI_LOG_LEVEL", "INFO")),

		MaxSequences: getEnvInt("ABUNAI_MAX_SEQUENCES", model.DefaultMaxSequences),
		Parallel:     getEnv("ABUNAI_PARALLEL", "false") == "true",
		RunTimeout:   getEnvDuration("ABUNAI_RUN_TIMEOUT", 60*time.Second),
	}
}

// String lists the effective configuration as key=value pairs.
func (c Config) String() string {
	return fmt.Sprintf("addr=%s casestudies=%s db=%s log_file=%s log_level=%s max_sequences=%d parallel=%t run_timeout=%s",
		c.Addr, c.CaseStudiesDir, c.DBPath, c.LogFile, c.LogLevel, c.MaxSequences, c.Parallel, c.RunTimeout)
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// ParseLogLevel maps a level name to a slog level. Unknown names map to Info.
func ParseLogLevel(s string) slog.Level {
	return parseLogLevel(s)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
