package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	General GeneralConfig `mapstructure:"general"`
	UI      UIConfig      `mapstructure:"ui"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Data    DataConfig    `mapstructure:"data"`
	Library LibraryConfig `mapstructure:"library"`
}

type GeneralConfig struct {
	ConfirmDestructiveOps bool `mapstructure:"confirm_destructive_ops"`
}

type UIConfig struct {
	Theme        string `mapstructure:"theme"`
	MouseEnabled bool   `mapstructure:"mouse_enabled"`
	ShowRowCount bool   `mapstructure:"show_row_count"`
}

type FilterConfig struct {
	DefaultCaseSensitive bool `mapstructure:"default_case_sensitive"`
	ShowInstructions     bool `mapstructure:"show_instructions"`
}

type DataConfig struct {
	MaxCellDisplayLength int `mapstructure:"max_cell_display_length"`
	VirtualScrollBuffer  int `mapstructure:"virtual_scroll_buffer"`
}

type LibraryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			ConfirmDestructiveOps: true,
		},
		UI: UIConfig{
			Theme:        "default",
			MouseEnabled: true,
			ShowRowCount: true,
		},
		Filter: FilterConfig{
			DefaultCaseSensitive: false,
			ShowInstructions:     true,
		},
		Data: DataConfig{
			MaxCellDisplayLength: 100,
			VirtualScrollBuffer:  100,
		},
		Library: LibraryConfig{
			Enabled: true,
			Path:    "",
		},
	}
}

// Load loads configuration from files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths in priority order
	// 1. User config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "lazytab"))
	}

	// 2. Current directory
	v.AddConfigPath(".")

	// 3. Default config directory
	v.AddConfigPath("./config")

	v.SetDefault("general.confirm_destructive_ops", true)
	v.SetDefault("ui.theme", "default")
	v.SetDefault("ui.mouse_enabled", true)
	v.SetDefault("ui.show_row_count", true)
	v.SetDefault("filter.default_case_sensitive", false)
	v.SetDefault("filter.show_instructions", true)
	v.SetDefault("data.max_cell_display_length", 100)
	v.SetDefault("data.virtual_scroll_buffer", 100)
	v.SetDefault("library.enabled", true)
	v.SetDefault("library.path", "")

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LibraryPath resolves the sqlite library location: the configured
// path, or <user config dir>/lazytab/library.db.
func (c *Config) LibraryPath() (string, error) {
	if c.Library.Path != "" {
		return c.Library.Path, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(configDir, "lazytab")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "library.db"), nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "lazytab"), nil
}
