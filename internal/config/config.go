package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config keeps runtime settings for the CLI.
type Config struct {
	DatabasePath string `yaml:"database_path"`

	// Focus session defaults, minutes.
	FocusMinutes      int `yaml:"focus_minutes"`
	ShortBreakMinutes int `yaml:"short_break_minutes"`

	// UrgentWindowHours drives the quadrant view's urgency threshold.
	UrgentWindowHours int `yaml:"urgent_window_hours"`

	// WatchIntervalMinutes is how often the watch command rolls recurring
	// tasks forward.
	WatchIntervalMinutes int `yaml:"watch_interval_minutes"`
}

// Load reads ~/.tidydo/config.yaml when present, then applies environment
// overrides and defaults. A missing file is not an error.
func Load() (Config, error) {
	cfg := Config{
		FocusMinutes:         25,
		ShortBreakMinutes:    5,
		UrgentWindowHours:    24,
		WatchIntervalMinutes: 30,
	}

	if path, err := configPath(); err == nil {
		if raw, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("TIDYDO_DB")); v != "" {
		cfg.DatabasePath = v
	}
	if v := parsePositiveInt(os.Getenv("TIDYDO_FOCUS_MINUTES")); v > 0 {
		cfg.FocusMinutes = v
	}
	if v := parsePositiveInt(os.Getenv("TIDYDO_URGENT_WINDOW_HOURS")); v > 0 {
		cfg.UrgentWindowHours = v
	}

	if cfg.FocusMinutes <= 0 {
		cfg.FocusMinutes = 25
	}
	if cfg.ShortBreakMinutes <= 0 {
		cfg.ShortBreakMinutes = 5
	}
	if cfg.UrgentWindowHours <= 0 {
		cfg.UrgentWindowHours = 24
	}
	if cfg.WatchIntervalMinutes <= 0 {
		cfg.WatchIntervalMinutes = 30
	}

	return cfg, nil
}

// FocusDuration returns the default planned session length.
func (c Config) FocusDuration() time.Duration {
	return time.Duration(c.FocusMinutes) * time.Minute
}

// UrgentWindow returns the quadrant urgency threshold.
func (c Config) UrgentWindow() time.Duration {
	return time.Duration(c.UrgentWindowHours) * time.Hour
}

// WatchInterval returns the pre-materialization cadence.
func (c Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalMinutes) * time.Minute
}

func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".tidydo", "config.yaml"), nil
}

func parsePositiveInt(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
