package config

import "time"

// TestConfig returns a config suitable for testing. Paths are empty; tests
// set them under t.TempDir().
func TestConfig() *Config {
	cfg := defaultConfig()
	cfg.Database = DatabaseConfig{Timeout: 1 * time.Second}
	cfg.Index.Roots = nil
	cfg.Index.Watch = false
	cfg.Search.TextDebounce = 10 * time.Millisecond
	cfg.Search.ToggleDebounce = 5 * time.Millisecond
	cfg.Search.RememberModes = false
	cfg.Log = LogConfig{Level: "off"}
	return cfg
}
