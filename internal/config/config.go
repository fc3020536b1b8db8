// Package config loads and saves subtrackr settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/badoux/checkmail"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/subtrackr/internal/pipeline"
)

// Config holds all subtrackr configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Profile       ProfileConfig       `toml:"profile"`
	Savings       SavingsConfig       `toml:"savings"`
	Notifications NotificationsConfig `toml:"notifications"`
	Appearance    AppearanceConfig    `toml:"appearance"`
	Daemon        DaemonConfig        `toml:"daemon"`
}

// GeneralConfig holds list defaults and the database location.
type GeneralConfig struct {
	DefaultSort     string `toml:"default_sort"`
	DefaultCategory string `toml:"default_category"`
	UpcomingLimit   int    `toml:"upcoming_limit"`
	DBPath          string `toml:"db_path,omitempty"`
}

// ProfileConfig holds the account details shown on the profile tab.
type ProfileConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// SavingsConfig holds the savings goal.
type SavingsConfig struct {
	GoalUSD float64 `toml:"goal_usd"`
	Period  string  `toml:"period"`
}

// NotificationsConfig holds renewal reminder preferences.
type NotificationsConfig struct {
	Enabled          bool `toml:"enabled"`
	RemindDaysBefore int  `toml:"remind_days_before"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DaemonConfig holds the snapshot server settings.
type DaemonConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			DefaultSort:     "renewal",
			DefaultCategory: pipeline.AllCategories,
			UpcomingLimit:   3,
		},
		Savings: SavingsConfig{
			GoalUSD: 100,
			Period:  string(pipeline.PeriodMonthly),
		},
		Notifications: NotificationsConfig{
			Enabled:          true,
			RemindDaysBefore: 1,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Daemon: DaemonConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrackr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "subtrackr")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "subtrackr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "subtrackr")
}

// DBPath returns the database path, honoring the configured override.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "subtrackr.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Environment overrides are applied on top of the file.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// envOverrides are read from SUBTRACKR_* variables. Unset variables leave
// the file value alone.
type envOverrides struct {
	DBPath      string   `env:"DB"`
	Theme       string   `env:"THEME"`
	DefaultSort string   `env:"SORT"`
	Category    string   `env:"CATEGORY"`
	GoalUSD     *float64 `env:"GOAL_USD"`
	Period      string   `env:"GOAL_PERIOD"`
	DaemonAddr  string   `env:"DAEMON_ADDR"`
}

// ApplyEnv overlays SUBTRACKR_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, env.Options{Prefix: "SUBTRACKR_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	if o.DBPath != "" {
		cfg.General.DBPath = o.DBPath
	}
	if o.Theme != "" {
		cfg.Appearance.Theme = o.Theme
	}
	if o.DefaultSort != "" {
		cfg.General.DefaultSort = o.DefaultSort
	}
	if o.Category != "" {
		cfg.General.DefaultCategory = o.Category
	}
	if o.GoalUSD != nil {
		cfg.Savings.GoalUSD = *o.GoalUSD
	}
	if o.Period != "" {
		cfg.Savings.Period = o.Period
	}
	if o.DaemonAddr != "" {
		cfg.Daemon.Addr = o.DaemonAddr
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := pipeline.ParseSortKey(c.General.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("general.default_sort: %w", err))
	}
	if strings.TrimSpace(c.General.DefaultCategory) == "" {
		errs = append(errs, errors.New("general.default_category: must not be empty"))
	}
	if c.General.UpcomingLimit < 0 {
		errs = append(errs, errors.New("general.upcoming_limit: must not be negative"))
	}
	if c.Savings.GoalUSD < 0 {
		errs = append(errs, errors.New("savings.goal_usd: must not be negative"))
	}
	if _, err := pipeline.ParseGoalPeriod(c.Savings.Period); err != nil {
		errs = append(errs, fmt.Errorf("savings.period: %w", err))
	}
	if c.Notifications.RemindDaysBefore < 0 {
		errs = append(errs, errors.New("notifications.remind_days_before: must not be negative"))
	}
	if c.Profile.Email != "" {
		if err := checkmail.ValidateFormat(c.Profile.Email); err != nil {
			errs = append(errs, fmt.Errorf("profile.email: %w", err))
		}
	}

	return errors.Join(errs...)
}

// Goal returns the configured goal target as a money amount.
func (c Config) Goal() decimal.Decimal {
	return decimal.NewFromFloat(c.Savings.GoalUSD).Round(2)
}

// SortKey returns the configured default sort key, falling back to renewal.
func (c Config) SortKey() pipeline.SortKey {
	k, err := pipeline.ParseSortKey(c.General.DefaultSort)
	if err != nil {
		return pipeline.SortRenewal
	}
	return k
}
