package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cristianoliveira/soundboard/internal/config"
	"github.com/stretchr/testify/require"
)

func setupTest(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_STATE_HOME", tmp)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("HOME", tmp)
	config.Load()
	return tmp
}

func lastEntry(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	require.NotEmpty(t, lines)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestConfigFromGlobal(t *testing.T) {
	setupTest(t)
	t.Setenv("SOUNDBOARD_LOGGING_ENABLED", "true")
	t.Setenv("SOUNDBOARD_LOGGING_LEVEL", "warn")
	t.Setenv("SOUNDBOARD_LOGGING_MAX_FILES", "5")
	config.Load()

	cfg := FromGlobalConfig()
	require.True(t, cfg.Enabled)
	require.Equal(t, "warn", cfg.Level)
	require.Equal(t, 5, cfg.MaxFiles)
	require.Equal(t, filepath.Base(os.Args[0]), cfg.Command)
	require.Equal(t, os.Getpid(), cfg.PID)
}

func TestDebugForcesDebugLevel(t *testing.T) {
	setupTest(t)
	t.Setenv("SOUNDBOARD_DEBUG", "true")
	t.Setenv("SOUNDBOARD_LOGGING_LEVEL", "error")
	config.Load()

	require.Equal(t, "debug", FromGlobalConfig().Level)
}

func TestLogDir(t *testing.T) {
	tmp := setupTest(t)

	stateDir := config.Get("state_dir", "")
	require.True(t, strings.HasPrefix(stateDir, tmp), "state_dir %s not in temp dir %s", stateDir, tmp)

	logDir, err := LogDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(stateDir, "logs"), logDir)
	info, err := os.Stat(logDir)
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestInitDisabled(t *testing.T) {
	logger, err := Init(Config{Enabled: false})
	require.NoError(t, err)
	require.IsType(t, noopLogger{}, logger)
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	require.NoError(t, logger.Shutdown())
}

func TestInitEnabledCreatesFile(t *testing.T) {
	setupTest(t)
	t.Setenv("SOUNDBOARD_LOGGING_ENABLED", "true")
	config.Load()

	cfg := FromGlobalConfig()
	cfg.Command = "testcmd"
	logger, err := Init(cfg)
	require.NoError(t, err)
	defer logger.Shutdown()

	logDir := filepath.Join(config.Get("state_dir", ""), "logs")
	entries, err := os.ReadDir(logDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	fname := entries[0].Name()
	require.True(t, strings.HasPrefix(fname, "soundboard_"))
	require.Contains(t, fname, fmt.Sprintf("_PID%d_", os.Getpid()))
	require.True(t, strings.HasSuffix(fname, "_testcmd.log"))
}

func TestLoggingWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")

	logger.With("component", "favorites").Info("test message", "key1", "value1", "key2", 42)

	entry := lastEntry(t, buf.String())
	require.Equal(t, "info", entry["level"])
	require.Equal(t, "test message", entry["msg"])
	require.Equal(t, float64(os.Getpid()), entry["pid"])
	require.Equal(t, "favorites", entry["component"])
	require.Equal(t, "value1", entry["key1"])
	require.Equal(t, float64(42), entry["key2"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")

	logger.Info("dropped")
	require.Empty(t, buf.String())

	logger.Warn("kept")
	require.Equal(t, "kept", lastEntry(t, buf.String())["msg"])
}

func TestRedaction(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info")

	dataURL := "data:audio/wav;base64," + strings.Repeat("A", 200)
	logger.Info("drop", "auth_token", "hunter2", "audio_file", dataURL)

	entry := lastEntry(t, buf.String())
	require.Equal(t, "[REDACTED]", entry["auth_token"])
	audio, ok := entry["audio_file"].(string)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(audio, "data:audio/wav;base64,"))
	require.Contains(t, audio, "(222 bytes)")
	require.Less(t, len(audio), 100)
}

func TestRotateKeepsNewestFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		path := filepath.Join(dir, fmt.Sprintf("soundboard_%d.log", i))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		stamp := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, os.Chtimes(path, stamp, stamp))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), []byte("x"), 0o600))

	require.NoError(t, rotate(dir, 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{"soundboard_3.log", "soundboard_4.log", "other.log"}, names)
}
