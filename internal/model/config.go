package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "postgres".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// SQLitePath is the database file path for the sqlite backend.
	SQLitePath string `mapstructure:"sqlite_path" yaml:"sqlite_path"`

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string `mapstructure:"postgres_url" yaml:"postgres_url"`
}

// ReminderConfig holds the notification-builder settings.
type ReminderConfig struct {
	// Enabled turns reminder generation on or off entirely.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// DefaultTime is the HH:MM fallback for reminders on untimed tasks.
	DefaultTime string `mapstructure:"default_time" yaml:"default_time"`

	// IncludeEncouragement adds the midday/evening encouragement entries.
	IncludeEncouragement bool `mapstructure:"include_encouragement" yaml:"include_encouragement"`

	// QuietStart/QuietEnd bound the window (HH:MM, inclusive) in which no
	// reminders are produced. Both empty disables quiet hours.
	QuietStart string `mapstructure:"quiet_start" yaml:"quiet_start"`
	QuietEnd   string `mapstructure:"quiet_end" yaml:"quiet_end"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage   StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Reminders ReminderConfig `mapstructure:"reminders" yaml:"reminders"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/habito/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "habito", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: defaultDBPath(),
		},
		Reminders: ReminderConfig{
			Enabled:              true,
			DefaultTime:          "09:00",
			IncludeEncouragement: true,
		},
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "habito.db")
	}
	return filepath.Join(home, ".local", "share", "habito", "habito.db")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.sqlite_path", defaultDBPath())
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.default_time", "09:00")
	v.SetDefault("reminders.include_encouragement", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("reminders", cfg.Reminders)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
