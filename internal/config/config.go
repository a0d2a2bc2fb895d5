package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	UI       UIConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path       string
	Migrations string
}

// UIConfig holds picker presentation settings.
type UIConfig struct {
	DateFormat    string `mapstructure:"date_format"`
	Separator     string
	WeekStart     string `mapstructure:"week_start"`
	Timezone      string
	CloseOnToPick bool   `mapstructure:"close_on_to_pick"`
	CursorBlink   bool   `mapstructure:"cursor_blink"`
	PresetsFile   string `mapstructure:"presets_file"`
}

// LogConfig controls debug logging. An empty path disables it.
type LogConfig struct {
	Path string
}

func configPath() string {
	if p := os.Getenv("RANGEPICK_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "rangepick", "config.toml")
}

// Load reads configuration from file and env. Env var overrides use prefix
// RANGEPICK_; a .env file in the working directory is loaded first if present.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "rangepick", "rangepick.db"))
	v.SetDefault("database.migrations", "internal/database/migrations")
	v.SetDefault("ui.date_format", "2006-01-02")
	v.SetDefault("ui.separator", " - ")
	v.SetDefault("ui.week_start", "monday")
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.close_on_to_pick", true)
	v.SetDefault("ui.cursor_blink", true)
	v.SetDefault("ui.presets_file", "")
	v.SetDefault("log.path", "")

	v.SetConfigType("toml")
	if p := os.Getenv("RANGEPICK_CONFIG"); p != "" {
		v.SetConfigFile(p)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "rangepick"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("RANGEPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes cfg to the config file, creating its directory if needed.
func Save(cfg Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("database.migrations", cfg.Database.Migrations)
	v.Set("ui.date_format", cfg.UI.DateFormat)
	v.Set("ui.separator", cfg.UI.Separator)
	v.Set("ui.week_start", cfg.UI.WeekStart)
	v.Set("ui.timezone", cfg.UI.Timezone)
	v.Set("ui.close_on_to_pick", cfg.UI.CloseOnToPick)
	v.Set("ui.cursor_blink", cfg.UI.CursorBlink)
	v.Set("ui.presets_file", cfg.UI.PresetsFile)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Location resolves the configured timezone, falling back to time.Local.
func (u UIConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(u.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// Weekday parses the configured week start; unknown values mean Monday.
func (u UIConfig) Weekday() time.Weekday {
	switch strings.ToLower(strings.TrimSpace(u.WeekStart)) {
	case "sunday", "sun":
		return time.Sunday
	case "saturday", "sat":
		return time.Saturday
	default:
		return time.Monday
	}
}
