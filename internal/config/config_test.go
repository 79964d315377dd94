package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Calendar.Timeout != 10*time.Second {
		t.Errorf("Calendar.Timeout = %v, want 10s", cfg.Calendar.Timeout)
	}
	if cfg.Calendar.CacheTTL != 10*time.Minute {
		t.Errorf("Calendar.CacheTTL = %v, want 10m", cfg.Calendar.CacheTTL)
	}
	if cfg.News.CacheTTL != 15*time.Minute {
		t.Errorf("News.CacheTTL = %v, want 15m", cfg.News.CacheTTL)
	}
	if cfg.News.MaxArticles != 10 {
		t.Errorf("News.MaxArticles = %d, want 10", cfg.News.MaxArticles)
	}
	if cfg.News.DisplayLimit != 20 {
		t.Errorf("News.DisplayLimit = %d, want 20", cfg.News.DisplayLimit)
	}
	if cfg.Relay.BaseURL != "https://api.allorigins.win/raw?url=" {
		t.Errorf("Relay.BaseURL = %q", cfg.Relay.BaseURL)
	}
	if cfg.Relay.UserAgent == "" {
		t.Error("Relay.UserAgent should not be empty")
	}
	if cfg.Log.Level != "off" {
		t.Errorf("Log.Level = %q, want off", cfg.Log.Level)
	}
	if cfg.UI.Colors.Primary == "" {
		t.Error("UI.Colors.Primary should not be empty")
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Calendar.CacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.News.CacheTTL)
	assert.True(t, filepath.IsAbs(cfg.Database.Path))
}

func TestLoad_PartialFileMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[news]
cache_ttl = "30m"
display_limit = 5

[relay]
base_url = ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.News.CacheTTL)
	assert.Equal(t, 5, cfg.News.DisplayLimit)
	assert.Equal(t, 10, cfg.News.MaxArticles, "untouched keys keep their defaults")
	assert.Equal(t, 10*time.Second, cfg.News.Timeout)
	assert.Equal(t, "", cfg.Relay.BaseURL)
	assert.NotEmpty(t, cfg.Relay.UserAgent)
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[calendar]\nupcoming_days = 3\n"), 0o644))

	t.Setenv("SOWESTART_CALENDAR_TIMEOUT", "3s")
	t.Setenv("SOWESTART_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Calendar.Timeout)
	assert.Equal(t, 3, cfg.Calendar.UpcomingDays)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("this is = = not toml ["), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[news]\nmax_articles = 0\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero calendar timeout", func(c *Config) { c.Calendar.Timeout = 0 }, true},
		{"zero news timeout", func(c *Config) { c.News.Timeout = 0 }, true},
		{"negative ttl", func(c *Config) { c.News.CacheTTL = -time.Second }, true},
		{"zero ttl disables cache", func(c *Config) { c.Calendar.CacheTTL = 0 }, false},
		{"zero display limit", func(c *Config) { c.News.DisplayLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, "", expandPath(""))
	assert.Equal(t, filepath.Join(home, "x.db"), expandPath("~/x.db"))
	assert.True(t, filepath.IsAbs(expandPath("relative.db")))
	assert.Equal(t, "/abs/path.db", expandPath("/abs/path.db"))
}

func TestSaveWritesReadableTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := defaultConfig()
	cfg.News.CacheTTL = 42 * time.Minute
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, toml.Unmarshal(data, &raw))
	news, ok := raw["news"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "42m0s", news["cache_ttl"])

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42*time.Minute, loaded.News.CacheTTL)
	assert.Equal(t, cfg.Relay.BaseURL, loaded.Relay.BaseURL)
	assert.Equal(t, cfg.UI.Colors, loaded.UI.Colors)
}

func TestGenerateDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, GenerateDefaultConfig(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig().Calendar, loaded.Calendar)
	assert.Equal(t, defaultConfig().News, loaded.News)
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.Relay.BaseURL)
	assert.Equal(t, "off", cfg.Log.Level)
}
