package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Index    IndexConfig    `mapstructure:"index"`
	Search   SearchConfig   `mapstructure:"search"`
	Migemo   MigemoConfig   `mapstructure:"migemo"`
	UI       UIConfig       `mapstructure:"ui"`
	Opener   OpenerConfig   `mapstructure:"opener"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	Path        string        `mapstructure:"path"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SearchIndex string        `mapstructure:"search_index"`
}

type IndexConfig struct {
	Roots          []string      `mapstructure:"roots"`
	Exclude        []string      `mapstructure:"exclude"`
	IncludeHidden  bool          `mapstructure:"include_hidden"`
	BatchSize      int           `mapstructure:"batch_size"`
	RebuildOnStart bool          `mapstructure:"rebuild_on_start"`
	Watch          bool          `mapstructure:"watch"`
	WatchDebounce  time.Duration `mapstructure:"watch_debounce"`
	UpdateRate     float64       `mapstructure:"update_rate"`
}

// Search modes accepted by SearchConfig.DefaultMode.
const (
	ModePlain  = "plain"
	ModeRegex  = "regex"
	ModeMigemo = "migemo"
)

type SearchConfig struct {
	TextDebounce   time.Duration `mapstructure:"text_debounce"`
	ToggleDebounce time.Duration `mapstructure:"toggle_debounce"`
	DefaultMode    string        `mapstructure:"default_mode"`
	RememberModes  bool          `mapstructure:"remember_modes"`
}

type MigemoConfig struct {
	Dictionary  string `mapstructure:"dictionary"`
	RomajiTable string `mapstructure:"romaji_table"`
	MaxWords    int    `mapstructure:"max_words"`
}

type UIConfig struct {
	Colors     UIColors      `mapstructure:"colors"`
	Columns    ColumnsConfig `mapstructure:"columns"`
	DateFormat string        `mapstructure:"date_format"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Highlight string `mapstructure:"highlight"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

// ColumnsConfig holds result column widths in cells. The name column takes
// whatever is left.
type ColumnsConfig struct {
	Folder   int `mapstructure:"folder"`
	Size     int `mapstructure:"size"`
	Modified int `mapstructure:"modified"`
}

// OpenerConfig overrides the platform commands. Arguments may contain
// {path} and {dir}.
type OpenerConfig struct {
	Open   []string `mapstructure:"open"`
	Reveal []string `mapstructure:"reveal"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit         string `mapstructure:"quit"`
	ToggleRegex  string `mapstructure:"toggle_regex"`
	ToggleMigemo string `mapstructure:"toggle_migemo"`
	Open         string `mapstructure:"open"`
	Reveal       string `mapstructure:"reveal"`
	CopyPath     string `mapstructure:"copy_path"`
	Clear        string `mapstructure:"clear"`
	Help         string `mapstructure:"help"`
	History      string `mapstructure:"history"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// Key resolves a binding to a key string. Single characters get the
// modifier; anything else ("alt+r", "f1", "enter") is used as written.
func (k KeyConfig) Key(binding string) string {
	if len([]rune(binding)) == 1 && k.Modifier != "" {
		return k.Modifier + "+" + binding
	}
	return binding
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".mifind")

	return &Config{
		Database: DatabaseConfig{
			Path:        filepath.Join(dataDir, "mifind.db"),
			Timeout:     1 * time.Second,
			SearchIndex: filepath.Join(dataDir, "index.bleve"),
		},
		Index: IndexConfig{
			Roots:         []string{homeDir},
			Exclude:       []string{".git", ".hg", ".svn", "node_modules", ".cache", "__pycache__", ".Trash"},
			BatchSize:     1000,
			Watch:         true,
			WatchDebounce: 300 * time.Millisecond,
			UpdateRate:    20,
		},
		Search: SearchConfig{
			TextDebounce:   500 * time.Millisecond,
			ToggleDebounce: 100 * time.Millisecond,
			DefaultMode:    ModePlain,
			RememberModes:  true,
		},
		Migemo: MigemoConfig{
			MaxWords: 256,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Highlight: "#FACC15",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#F87171",
				Success:   "#4ADE80",
			},
			Columns: ColumnsConfig{
				Folder:   40,
				Size:     12,
				Modified: 16,
			},
			DateFormat: "2006-01-02 15:04",
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:         "q",
				ToggleRegex:  "r",
				ToggleMigemo: "alt+r",
				Open:         "enter",
				Reveal:       "o",
				CopyPath:     "y",
				Clear:        "u",
				Help:         "f1",
				History:      "p",
			},
		},
		Log: LogConfig{
			Level: "off",
			Path:  filepath.Join(dataDir, "mifind.log"),
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("database.timeout", cfg.Database.Timeout)
	v.SetDefault("database.search_index", cfg.Database.SearchIndex)

	v.SetDefault("index.roots", cfg.Index.Roots)
	v.SetDefault("index.exclude", cfg.Index.Exclude)
	v.SetDefault("index.include_hidden", cfg.Index.IncludeHidden)
	v.SetDefault("index.batch_size", cfg.Index.BatchSize)
	v.SetDefault("index.rebuild_on_start", cfg.Index.RebuildOnStart)
	v.SetDefault("index.watch", cfg.Index.Watch)
	v.SetDefault("index.watch_debounce", cfg.Index.WatchDebounce)
	v.SetDefault("index.update_rate", cfg.Index.UpdateRate)

	v.SetDefault("search.text_debounce", cfg.Search.TextDebounce)
	v.SetDefault("search.toggle_debounce", cfg.Search.ToggleDebounce)
	v.SetDefault("search.default_mode", cfg.Search.DefaultMode)
	v.SetDefault("search.remember_modes", cfg.Search.RememberModes)

	v.SetDefault("migemo.dictionary", cfg.Migemo.Dictionary)
	v.SetDefault("migemo.romaji_table", cfg.Migemo.RomajiTable)
	v.SetDefault("migemo.max_words", cfg.Migemo.MaxWords)

	v.SetDefault("ui.colors.primary", cfg.UI.Colors.Primary)
	v.SetDefault("ui.colors.secondary", cfg.UI.Colors.Secondary)
	v.SetDefault("ui.colors.accent", cfg.UI.Colors.Accent)
	v.SetDefault("ui.colors.highlight", cfg.UI.Colors.Highlight)
	v.SetDefault("ui.colors.text", cfg.UI.Colors.Text)
	v.SetDefault("ui.colors.muted", cfg.UI.Colors.Muted)
	v.SetDefault("ui.colors.error", cfg.UI.Colors.Error)
	v.SetDefault("ui.colors.success", cfg.UI.Colors.Success)
	v.SetDefault("ui.columns.folder", cfg.UI.Columns.Folder)
	v.SetDefault("ui.columns.size", cfg.UI.Columns.Size)
	v.SetDefault("ui.columns.modified", cfg.UI.Columns.Modified)
	v.SetDefault("ui.date_format", cfg.UI.DateFormat)

	v.SetDefault("opener.open", cfg.Opener.Open)
	v.SetDefault("opener.reveal", cfg.Opener.Reveal)

	v.SetDefault("keys.modifier", cfg.Keys.Modifier)
	v.SetDefault("keys.bindings.quit", cfg.Keys.Bindings.Quit)
	v.SetDefault("keys.bindings.toggle_regex", cfg.Keys.Bindings.ToggleRegex)
	v.SetDefault("keys.bindings.toggle_migemo", cfg.Keys.Bindings.ToggleMigemo)
	v.SetDefault("keys.bindings.open", cfg.Keys.Bindings.Open)
	v.SetDefault("keys.bindings.reveal", cfg.Keys.Bindings.Reveal)
	v.SetDefault("keys.bindings.copy_path", cfg.Keys.Bindings.CopyPath)
	v.SetDefault("keys.bindings.clear", cfg.Keys.Bindings.Clear)
	v.SetDefault("keys.bindings.help", cfg.Keys.Bindings.Help)
	v.SetDefault("keys.bindings.history", cfg.Keys.Bindings.History)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.path", cfg.Log.Path)
}

// DefaultPath is ~/.config/mifind/config.toml.
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "mifind", "config.toml")
}

// Load reads defaults, then the config file, then MIFIND_* environment
// variables. An empty configPath searches ~/.config/mifind and the working
// directory; a missing file is not an error there.
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

	v.SetEnvPrefix("MIFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
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

// Validate rejects values the program cannot run with.
func (c *Config) Validate() error {
	switch c.Search.DefaultMode {
	case ModePlain, ModeRegex, ModeMigemo:
	case "":
		c.Search.DefaultMode = ModePlain
	default:
		return fmt.Errorf("search.default_mode: unknown mode %q", c.Search.DefaultMode)
	}
	if c.Search.TextDebounce < 0 || c.Search.ToggleDebounce < 0 {
		return fmt.Errorf("search: debounce delays must not be negative")
	}
	if c.Index.BatchSize < 0 {
		return fmt.Errorf("index.batch_size must not be negative")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
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
	cfg.Database.SearchIndex = expandPath(cfg.Database.SearchIndex)
	cfg.Migemo.Dictionary = expandPath(cfg.Migemo.Dictionary)
	cfg.Migemo.RomajiTable = expandPath(cfg.Migemo.RomajiTable)
	cfg.Log.Path = expandPath(cfg.Log.Path)
	for i, r := range cfg.Index.Roots {
		cfg.Index.Roots[i] = expandPath(r)
	}
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	v.Set("database", map[string]any{
		"path":         config.Database.Path,
		"timeout":      config.Database.Timeout.String(),
		"search_index": config.Database.SearchIndex,
	})
	v.Set("index", map[string]any{
		"roots":            config.Index.Roots,
		"exclude":          config.Index.Exclude,
		"include_hidden":   config.Index.IncludeHidden,
		"batch_size":       config.Index.BatchSize,
		"rebuild_on_start": config.Index.RebuildOnStart,
		"watch":            config.Index.Watch,
		"watch_debounce":   config.Index.WatchDebounce.String(),
		"update_rate":      config.Index.UpdateRate,
	})
	v.Set("search", map[string]any{
		"text_debounce":   config.Search.TextDebounce.String(),
		"toggle_debounce": config.Search.ToggleDebounce.String(),
		"default_mode":    config.Search.DefaultMode,
		"remember_modes":  config.Search.RememberModes,
	})
	v.Set("migemo", map[string]any{
		"dictionary":   config.Migemo.Dictionary,
		"romaji_table": config.Migemo.RomajiTable,
		"max_words":    config.Migemo.MaxWords,
	})
	v.Set("ui", map[string]any{
		"colors": map[string]any{
			"primary":   config.UI.Colors.Primary,
			"secondary": config.UI.Colors.Secondary,
			"accent":    config.UI.Colors.Accent,
			"highlight": config.UI.Colors.Highlight,
			"text":      config.UI.Colors.Text,
			"muted":     config.UI.Colors.Muted,
			"error":     config.UI.Colors.Error,
			"success":   config.UI.Colors.Success,
		},
		"columns": map[string]any{
			"folder":   config.UI.Columns.Folder,
			"size":     config.UI.Columns.Size,
			"modified": config.UI.Columns.Modified,
		},
		"date_format": config.UI.DateFormat,
	})
	v.Set("opener", map[string]any{
		"open":   config.Opener.Open,
		"reveal": config.Opener.Reveal,
	})
	v.Set("keys", map[string]any{
		"modifier": config.Keys.Modifier,
		"bindings": map[string]any{
			"quit":          config.Keys.Bindings.Quit,
			"toggle_regex":  config.Keys.Bindings.ToggleRegex,
			"toggle_migemo": config.Keys.Bindings.ToggleMigemo,
			"open":          config.Keys.Bindings.Open,
			"reveal":        config.Keys.Bindings.Reveal,
			"copy_path":     config.Keys.Bindings.CopyPath,
			"clear":         config.Keys.Bindings.Clear,
			"help":          config.Keys.Bindings.Help,
			"history":       config.Keys.Bindings.History,
		},
	})
	v.Set("log", map[string]any{
		"level": config.Log.Level,
		"path":  config.Log.Path,
	})

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
