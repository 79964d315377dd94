package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Relay    RelayConfig    `mapstructure:"relay"`
	Calendar CalendarConfig `mapstructure:"calendar"`
	News     NewsConfig     `mapstructure:"news"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// RelayConfig describes the CORS relay every feed request goes through.
// An empty BaseURL fetches feeds directly.
type RelayConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	UserAgent    string `mapstructure:"user_agent"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes"`
}

type CalendarConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	UpcomingDays  int           `mapstructure:"upcoming_days"`
	UpcomingLimit int           `mapstructure:"upcoming_limit"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
}

type NewsConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	MaxArticles       int           `mapstructure:"max_articles"`
	DisplayLimit      int           `mapstructure:"display_limit"`
	DescriptionLength int           `mapstructure:"description_length"`
	MaxConcurrent     int           `mapstructure:"max_concurrent"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Database: DatabaseConfig{
			Path:    filepath.Join(homeDir, ".sowestart.db"),
			Timeout: 1 * time.Second,
		},
		Relay: RelayConfig{
			BaseURL:      "https://api.allorigins.win/raw?url=",
			UserAgent:    "sowestart/1.0 (https://github.com/pders01/sowestart)",
			MaxBodyBytes: 5 << 20,
		},
		Calendar: CalendarConfig{
			Timeout:       10 * time.Second,
			CacheTTL:      10 * time.Minute,
			UpcomingDays:  7,
			UpcomingLimit: 10,
		},
		News: NewsConfig{
			Timeout:           10 * time.Second,
			CacheTTL:          15 * time.Minute,
			MaxArticles:       10,
			DisplayLimit:      20,
			DescriptionLength: 120,
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(homeDir, ".sowestart", "sowestart.log"),
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// setDefaults registers every leaf key so that partial config files and
// environment variables merge with the defaults instead of replacing whole
// sections.
func setDefaults(v *viper.Viper, cfg *Config) {
	defaults := map[string]any{
		"database.path":           cfg.Database.Path,
		"database.timeout":        cfg.Database.Timeout,
		"relay.base_url":          cfg.Relay.BaseURL,
		"relay.user_agent":        cfg.Relay.UserAgent,
		"relay.max_body_bytes":    cfg.Relay.MaxBodyBytes,
		"calendar.timeout":        cfg.Calendar.Timeout,
		"calendar.cache_ttl":      cfg.Calendar.CacheTTL,
		"calendar.upcoming_days":  cfg.Calendar.UpcomingDays,
		"calendar.upcoming_limit": cfg.Calendar.UpcomingLimit,
		"calendar.max_concurrent": cfg.Calendar.MaxConcurrent,
		"news.timeout":            cfg.News.Timeout,
		"news.cache_ttl":          cfg.News.CacheTTL,
		"news.max_articles":       cfg.News.MaxArticles,
		"news.display_limit":      cfg.News.DisplayLimit,
		"news.description_length": cfg.News.DescriptionLength,
		"news.max_concurrent":     cfg.News.MaxConcurrent,
		"log.level":               cfg.Log.Level,
		"log.path":                cfg.Log.Path,
		"ui.colors.primary":       cfg.UI.Colors.Primary,
		"ui.colors.secondary":     cfg.UI.Colors.Secondary,
		"ui.colors.accent":        cfg.UI.Colors.Accent,
		"ui.colors.muted":         cfg.UI.Colors.Muted,
		"ui.colors.error":         cfg.UI.Colors.Error,
		"ui.colors.success":       cfg.UI.Colors.Success,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// DefaultPath is where Load looks for config.toml when no path is given.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "sowestart", "config.toml")
}

func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SOWESTART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects values the pipelines cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Calendar.Timeout <= 0:
		return fmt.Errorf("calendar.timeout must be positive")
	case c.News.Timeout <= 0:
		return fmt.Errorf("news.timeout must be positive")
	case c.Calendar.CacheTTL < 0 || c.News.CacheTTL < 0:
		return fmt.Errorf("cache_ttl must not be negative")
	case c.News.MaxArticles <= 0:
		return fmt.Errorf("news.max_articles must be positive")
	case c.News.DisplayLimit <= 0:
		return fmt.Errorf("news.display_limit must be positive")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
}

// fileConfig mirrors Config with durations as strings for TOML readability.
type fileConfig struct {
	Database struct {
		Path    string `toml:"path"`
		Timeout string `toml:"timeout"`
	} `toml:"database"`
	Relay struct {
		BaseURL      string `toml:"base_url"`
		UserAgent    string `toml:"user_agent"`
		MaxBodyBytes int64  `toml:"max_body_bytes"`
	} `toml:"relay"`
	Calendar struct {
		Timeout       string `toml:"timeout"`
		CacheTTL      string `toml:"cache_ttl"`
		UpcomingDays  int    `toml:"upcoming_days"`
		UpcomingLimit int    `toml:"upcoming_limit"`
		MaxConcurrent int    `toml:"max_concurrent"`
	} `toml:"calendar"`
	News struct {
		Timeout           string `toml:"timeout"`
		CacheTTL          string `toml:"cache_ttl"`
		MaxArticles       int    `toml:"max_articles"`
		DisplayLimit      int    `toml:"display_limit"`
		DescriptionLength int    `toml:"description_length"`
		MaxConcurrent     int    `toml:"max_concurrent"`
	} `toml:"news"`
	Log struct {
		Level string `toml:"level"`
		Path  string `toml:"path"`
	} `toml:"log"`
	UI struct {
		Colors struct {
			Primary   string `toml:"primary"`
			Secondary string `toml:"secondary"`
			Accent    string `toml:"accent"`
			Muted     string `toml:"muted"`
			Error     string `toml:"error"`
			Success   string `toml:"success"`
		} `toml:"colors"`
	} `toml:"ui"`
}

func toFileConfig(config *Config) fileConfig {
	var fc fileConfig

	fc.Database.Path = config.Database.Path
	fc.Database.Timeout = config.Database.Timeout.String()

	fc.Relay.BaseURL = config.Relay.BaseURL
	fc.Relay.UserAgent = config.Relay.UserAgent
	fc.Relay.MaxBodyBytes = config.Relay.MaxBodyBytes

	fc.Calendar.Timeout = config.Calendar.Timeout.String()
	fc.Calendar.CacheTTL = config.Calendar.CacheTTL.String()
	fc.Calendar.UpcomingDays = config.Calendar.UpcomingDays
	fc.Calendar.UpcomingLimit = config.Calendar.UpcomingLimit
	fc.Calendar.MaxConcurrent = config.Calendar.MaxConcurrent

	fc.News.Timeout = config.News.Timeout.String()
	fc.News.CacheTTL = config.News.CacheTTL.String()
	fc.News.MaxArticles = config.News.MaxArticles
	fc.News.DisplayLimit = config.News.DisplayLimit
	fc.News.DescriptionLength = config.News.DescriptionLength
	fc.News.MaxConcurrent = config.News.MaxConcurrent

	fc.Log.Level = config.Log.Level
	fc.Log.Path = config.Log.Path

	fc.UI.Colors.Primary = config.UI.Colors.Primary
	fc.UI.Colors.Secondary = config.UI.Colors.Secondary
	fc.UI.Colors.Accent = config.UI.Colors.Accent
	fc.UI.Colors.Muted = config.UI.Colors.Muted
	fc.UI.Colors.Error = config.UI.Colors.Error
	fc.UI.Colors.Success = config.UI.Colors.Success

	return fc
}

func Save(config *Config, path string) error {
	data, err := toml.Marshal(toFileConfig(config))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
