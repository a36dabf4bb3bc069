package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}
	if cfg.Search.TextDebounce != 500*time.Millisecond {
		t.Errorf("Search.TextDebounce = %v, want 500ms", cfg.Search.TextDebounce)
	}
	if cfg.Search.ToggleDebounce != 100*time.Millisecond {
		t.Errorf("Search.ToggleDebounce = %v, want 100ms", cfg.Search.ToggleDebounce)
	}
	if cfg.Search.DefaultMode != ModePlain {
		t.Errorf("Search.DefaultMode = %q, want %q", cfg.Search.DefaultMode, ModePlain)
	}
	if len(cfg.Index.Roots) != 1 {
		t.Errorf("Index.Roots = %v, want the home directory", cfg.Index.Roots)
	}
	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.ToggleMigemo != "alt+r" {
		t.Errorf("Keys.Bindings.ToggleMigemo = %s, want 'alt+r'", cfg.Keys.Bindings.ToggleMigemo)
	}
}

func TestKeyResolution(t *testing.T) {
	k := KeyConfig{Modifier: "ctrl"}
	tests := map[string]string{
		"r":     "ctrl+r",
		"alt+r": "alt+r",
		"f1":    "f1",
		"enter": "enter",
	}
	for binding, want := range tests {
		if got := k.Key(binding); got != want {
			t.Errorf("Key(%q) = %q, want %q", binding, got, want)
		}
	}

	bare := KeyConfig{}
	if got := bare.Key("r"); got != "r" {
		t.Errorf("Key without modifier = %q, want 'r'", got)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.TextDebounce != 500*time.Millisecond {
		t.Errorf("Search.TextDebounce = %v, want 500ms", cfg.Search.TextDebounce)
	}
	if cfg.UI.Colors.Highlight == "" {
		t.Error("UI.Colors.Highlight should have a default")
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[database]
path = "/tmp/test.db"
timeout = "10s"

[index]
roots = ["/srv/data", "~/docs"]
watch = false

[search]
text_debounce = "250ms"
default_mode = "migemo"

[ui.colors]
primary = "#FF0000"

[keys.bindings]
toggle_regex = "x"
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Search.TextDebounce != 250*time.Millisecond {
		t.Errorf("Search.TextDebounce = %v, want 250ms", cfg.Search.TextDebounce)
	}
	if cfg.Search.ToggleDebounce != 100*time.Millisecond {
		t.Errorf("Search.ToggleDebounce = %v, want default 100ms", cfg.Search.ToggleDebounce)
	}
	if cfg.Search.DefaultMode != ModeMigemo {
		t.Errorf("Search.DefaultMode = %q, want migemo", cfg.Search.DefaultMode)
	}
	if cfg.Index.Watch {
		t.Error("Index.Watch should be false")
	}
	home, _ := os.UserHomeDir()
	if len(cfg.Index.Roots) != 2 || cfg.Index.Roots[1] != filepath.Join(home, "docs") {
		t.Errorf("Index.Roots = %v, want expanded ~/docs", cfg.Index.Roots)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
	if cfg.UI.Colors.Secondary != defaultConfig().UI.Colors.Secondary {
		t.Errorf("UI.Colors.Secondary = %s, want default", cfg.UI.Colors.Secondary)
	}
	if cfg.Keys.Bindings.ToggleRegex != "x" || cfg.Keys.Bindings.ToggleMigemo != "alt+r" {
		t.Errorf("Keys.Bindings = %+v", cfg.Keys.Bindings)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "c.toml")
	if err := os.WriteFile(configPath, []byte("[log]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MIFIND_LOG_LEVEL", "debug")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want env override 'debug'", cfg.Log.Level)
	}
}

func TestLoad_InvalidMode(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(configPath, []byte("[search]\ndefault_mode = \"fuzzy\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(configPath); err == nil {
		t.Fatal("Load() should reject an unknown default_mode")
	}
}

func TestSave(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.Path = "/test/path.db"
	cfg.Database.Timeout = 10 * time.Second
	cfg.Search.ToggleDebounce = 50 * time.Millisecond
	cfg.Opener.Open = []string{"my-open", "{path}"}
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(t.TempDir(), "nested", "saved-config.toml")
	if err := Save(cfg, savePath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}
	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Database.Timeout != cfg.Database.Timeout {
		t.Errorf("Loaded Database.Timeout = %v, want %v", loaded.Database.Timeout, cfg.Database.Timeout)
	}
	if loaded.Search.ToggleDebounce != 50*time.Millisecond {
		t.Errorf("Loaded Search.ToggleDebounce = %v, want 50ms", loaded.Search.ToggleDebounce)
	}
	if len(loaded.Opener.Open) != 2 || loaded.Opener.Open[0] != "my-open" {
		t.Errorf("Loaded Opener.Open = %v", loaded.Opener.Open)
	}
	if loaded.Keys.Modifier != "alt" {
		t.Errorf("Loaded Keys.Modifier = %s, want alt", loaded.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	if err := GenerateDefaultConfig(configPath); err != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}
	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.UI.DateFormat != "2006-01-02 15:04" {
		t.Errorf("Generated config has UI.DateFormat = %s", cfg.UI.DateFormat)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	if cfg.Index.Watch {
		t.Error("TestConfig should not watch")
	}
	if cfg.Database.Path != "" {
		t.Errorf("TestConfig Database.Path = %s, want empty", cfg.Database.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("TestConfig should validate: %v", err)
	}
}
