package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database.Path = ""
	cfg.Relay.BaseURL = ""
	cfg.Relay.UserAgent = "sowestart-test/1.0"
	cfg.Calendar.Timeout = 2 * time.Second
	cfg.News.Timeout = 2 * time.Second
	cfg.Log.Level = "off"
	cfg.Log.Path = ""
	return cfg
}
