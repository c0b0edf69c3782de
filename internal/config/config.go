package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Settings holds all configuration for the overlay.
type Settings struct {
	// API access
	APIKeys APIKeys `toml:"api_keys"`

	// Display
	ColumnOrder   []string       `toml:"column_order"`
	RatingConfigs []RatingConfig `toml:"rating_configs"`
	ShowOnTab     bool           `toml:"show_on_tab"`
	ShowOnTabKey  Keybind        `toml:"show_on_tab_keybind"`
	ChatHotkey    Keybind        `toml:"chat_hotkey"`

	// Behavior
	AutoWho        bool   `toml:"autowho"`
	KnownNicksFile string `toml:"known_nicks_file"`

	// Logging
	LogLevel string `toml:"log_level"` // debug, info, warn, error (default: info)

	// Rate limiting
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

// APIKeys holds the keys the overlay authenticates to third-party services
// with. Empty strings mean "not configured"; callers decide whether to
// prompt for one or skip the feature it gates.
type APIKeys struct {
	Hypixel    string `toml:"hypixel_api_key"`
	Antisniper string `toml:"antisniper_api_key"`
}

// Keybind names a single key combination for a hotkey setting.
type Keybind struct {
	Key       string `toml:"key"`
	Modifiers string `toml:"modifiers"`
}

// RatingConfig names the stat thresholds used to color-code a player in the
// table for one column (fkdr, stars, winstreak, ...).
type RatingConfig struct {
	Stat       string    `toml:"stat"`
	Thresholds []float64 `toml:"thresholds"`
}

// RateLimitConfig bounds how hard the overlay is allowed to hit upstream
// APIs.
type RateLimitConfig struct {
	HypixelLimit    int `toml:"hypixel_limit"`     // requests per window
	HypixelWindowMS int `toml:"hypixel_window_ms"`
	MojangLimit     int `toml:"mojang_limit"`
	MojangWindowMS  int `toml:"mojang_window_ms"`
}

// Default returns Settings with sensible defaults.
func Default() Settings {
	return Settings{
		ColumnOrder: []string{"username", "stars", "fkdr", "wlr", "winstreak"},
		RatingConfigs: []RatingConfig{
			{Stat: "fkdr", Thresholds: []float64{1, 2, 4, 8}},
			{Stat: "stars", Thresholds: []float64{100, 300, 500, 900}},
		},
		ShowOnTab:      true,
		ShowOnTabKey:   Keybind{Key: "Tab"},
		ChatHotkey:     Keybind{Key: "C", Modifiers: "ctrl"},
		AutoWho:        true,
		KnownNicksFile: "known_nicks.json",
		LogLevel:       "info",
		RateLimit: RateLimitConfig{
			HypixelLimit:    2,
			HypixelWindowMS: 1000,
			MojangLimit:     10,
			MojangWindowMS:  1000,
		},
	}
}

// Load loads settings from a TOML file. If the file doesn't exist, returns
// defaults.
func Load(path string) (Settings, error) {
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories as needed.
func Save(path string, cfg Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return nil
}
