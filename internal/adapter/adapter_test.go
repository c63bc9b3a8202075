package adapter

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 20, cfg.Search.PageSize)
	assert.Equal(t, 10, cfg.Search.MaxScanAttempts)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  url: https://gallery.example.com/api/v1
client:
  timeout: 5s
search:
  page_size: 50
  album_chance: true
viewer:
  command: feh
  args: ["--scale-down"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("PIXDECK_SERVER_TOKEN", "from-env")
	t.Setenv("PIXDECK_SEARCH_MAX_SCAN_ATTEMPTS", "3")

	cfg, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "https://gallery.example.com/api/v1", cfg.Server.URL)
	assert.Equal(t, "from-env", cfg.Server.Token)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 50, cfg.Search.PageSize)
	assert.Equal(t, 3, cfg.Search.MaxScanAttempts)
	assert.True(t, cfg.Search.AlbumChance)
	assert.Equal(t, "feh", cfg.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, cfg.Viewer.Args)
	assert.Equal(t, 3, cfg.Client.Burst, "unset keys keep defaults")
	assert.True(t, cfg.IsConfigured())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "https://gallery.example.com/api/v1"
	cfg.Server.Token = "tok"
	cfg.Search.PageSize = 40
	cfg.Client.Timeout = 12 * time.Second

	require.NoError(t, saveConfig(viper.New(), dir, cfg))
	require.FileExists(t, filepath.Join(dir, "config.yaml"))

	loaded, err := loadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, 40, loaded.Search.PageSize)
	assert.Equal(t, 12*time.Second, loaded.Client.Timeout)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestSetupLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pixdeck.log")
	logger, err := SetupLogger(&LoggingConfig{File: path, Level: "warn"})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "query", "cat")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), `"msg":"shown"`)
	assert.Contains(t, string(data), `"query":"cat"`)
}

func TestNewJSONLoggerAddsAppAttr(t *testing.T) {
	var buf bytes.Buffer
	newJSONLogger(&buf, slog.LevelInfo).Info("hello")
	assert.Contains(t, buf.String(), `"app":"pixdeck"`)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/logs/x.log")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "logs", "x.log"), got)

	got, err = ExpandHome("/abs/x.log")
	require.NoError(t, err)
	assert.Equal(t, "/abs/x.log", got)
}

func TestViewerCommandLine(t *testing.T) {
	url := "https://gallery.example.com/api/v1/traq/files/abc"

	tests := []struct {
		name     string
		cfg      ViewerConfig
		goos     string
		wantName string
		wantArgs []string
	}{
		{name: "configured", cfg: ViewerConfig{Command: "feh", Args: []string{"-F"}}, goos: "linux", wantName: "feh", wantArgs: []string{"-F", url}},
		{name: "linux default", goos: "linux", wantName: "xdg-open", wantArgs: []string{url}},
		{name: "macOS default", goos: "darwin", wantName: "open", wantArgs: []string{url}},
		{name: "windows default", goos: "windows", wantName: "cmd", wantArgs: []string{"/c", "start", "", url}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViewer(tt.cfg, NullLogger())
			v.goos = tt.goos
			name, args := v.commandLine(url)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestViewerOpen(t *testing.T) {
	v := NewViewer(ViewerConfig{Command: "feh"}, NullLogger())
	var gotName string
	var gotArgs []string
	v.start = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	require.NoError(t, v.Open("u"))
	assert.Equal(t, "feh", gotName)
	assert.Equal(t, []string{"u"}, gotArgs)

	v.start = func(string, ...string) error { return errors.New("not found") }
	assert.Error(t, v.Open("u"))
}

func TestClearCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "abc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abc", "pixdeck.db"), []byte("x"), 0644))

	require.NoError(t, ClearCache(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(""))
}
