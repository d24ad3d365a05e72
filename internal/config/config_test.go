package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"ABUNAI_ADDR", "ABUNAI_CASESTUDIES_DIR", "ABUNAI_DB", "ABUNAI_LOG_FILE",
	"ABUNAI_LOG_LEVEL", "ABUNAI_MAX_SEQUENCES", "ABUNAI_PARALLEL", "ABUNAI_RUN_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, ":2406", cfg.Addr)
	assert.Equal(t, "casestudies", cfg.CaseStudiesDir)
	assert.Empty(t, cfg.DBPath)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 10000, cfg.MaxSequences)
	assert.False(t, cfg.Parallel)
	assert.Equal(t, 60*time.Second, cfg.RunTimeout)
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ABUNAI_ADDR", "127.0.0.1:9000")
	t.Setenv("ABUNAI_CASESTUDIES_DIR", "/data/cases")
	t.Setenv("ABUNAI_DB", "/data/runs.db")
	t.Setenv("ABUNAI_LOG_LEVEL", "debug")
	t.Setenv("ABUNAI_MAX_SEQUENCES", "50")
	t.Setenv("ABUNAI_PARALLEL", "true")
	t.Setenv("ABUNAI_RUN_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "/data/cases", cfg.CaseStudiesDir)
	assert.Equal(t, "/data/runs.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 50, cfg.MaxSequences)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 5*time.Second, cfg.RunTimeout)
}

func TestLoad_MalformedValuesUseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("ABUNAI_MAX_SEQUENCES", "many")
	t.Setenv("ABUNAI_RUN_TIMEOUT", "-1s")
	t.Setenv("ABUNAI_PARALLEL", "yes")

	cfg := Load()

	assert.Equal(t, 10000, cfg.MaxSequences)
	assert.Equal(t, 60*time.Second, cfg.RunTimeout)
	assert.False(t, cfg.Parallel)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"loud":    slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestConfig_String(t *testing.T) {
	clearEnv(t)
	s := Load().String()
	assert.Contains(t, s, "addr=:2406")
	assert.Contains(t, s, "run_timeout=1m0s")
}

func TestSetupLoggerWithWriters(t *testing.T) {
	var stderr, file bytes.Buffer
	logger := SetupLoggerWithWriters(&stderr, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("analysis complete", "run_id", "r1")

	assert.Contains(t, stderr.String(), "msg=\"analysis complete\"")
	assert.NotContains(t, stderr.String(), "hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(file.Bytes()), &entry))
	assert.Equal(t, "analysis complete", entry["msg"])
	assert.Equal(t, "r1", entry["run_id"])
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abunai.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)

	logger.Info("hello")
	require.NoError(t, cleanup())

	data, err := readFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(data, "{"), "file log is JSON: %q", data)
	assert.Contains(t, data, `"msg":"hello"`)
}

func TestSetupLogger_StderrOnly(t *testing.T) {
	logger, cleanup := SetupLogger("", slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())
}

func TestSetupLogger_UnwritableFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "abunai.log")
	logger, cleanup := SetupLogger(path, slog.LevelInfo)
	assert.NotNil(t, logger)
	assert.NoError(t, cleanup())
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}
