// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/urben88/MindFlex/internal/difficulty"
	"github.com/urben88/MindFlex/internal/model"
)

// Content provider names.
const (
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play     PlayConfig        `toml:"play"`
	Settings SettingsConfig    `toml:"settings"`
	Content  ContentConfig     `toml:"content"`
	Log      LogConfig         `toml:"log"`
	Custom   difficulty.Custom `toml:"custom"`
}

// PlayConfig maps session defaults.
type PlayConfig struct {
	Difficulty *string `toml:"difficulty"`
	Activity   *string `toml:"activity"`
	DB         *string `toml:"db"`
}

// SettingsConfig maps the user settings stored alongside progress.
type SettingsConfig struct {
	Sound                *bool    `toml:"sound"`
	DarkMode             *bool    `toml:"dark-mode"`
	DifficultyMultiplier *float64 `toml:"difficulty-multiplier"`
}

// ContentConfig maps the content provider.
type ContentConfig struct {
	Provider *string `toml:"provider"`
	Model    *string `toml:"model"`
	Timeout  *string `toml:"timeout"`
}

// LogConfig maps logging.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that can be checked without the rest of the app.
func (c FileConfig) Validate() error {
	var errs []error
	if c.Play.Difficulty != nil {
		if _, err := model.ParseTier(*c.Play.Difficulty); err != nil {
			errs = append(errs, fmt.Errorf("play.difficulty: %w", err))
		}
	}
	if c.Play.Activity != nil {
		if _, err := model.ParseActivity(*c.Play.Activity); err != nil {
			errs = append(errs, fmt.Errorf("play.activity: %w", err))
		}
	}
	if m := c.Settings.DifficultyMultiplier; m != nil && !(*m > 0) {
		errs = append(errs, fmt.Errorf("settings.difficulty-multiplier must be > 0"))
	}
	if p := c.Content.Provider; p != nil && *p != ProviderOpenAI && *p != ProviderLocal {
		errs = append(errs, fmt.Errorf("content.provider must be %q or %q", ProviderOpenAI, ProviderLocal))
	}
	if _, err := c.Content.TimeoutOr(0); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Apply overlays the configured settings onto base.
func (s SettingsConfig) Apply(base model.Settings) model.Settings {
	if s.Sound != nil {
		base.SoundEnabled = *s.Sound
	}
	if s.DarkMode != nil {
		base.DarkMode = *s.DarkMode
	}
	if s.DifficultyMultiplier != nil {
		base.DifficultyMultiplier = *s.DifficultyMultiplier
	}
	return base
}

// TimeoutOr parses the configured timeout, returning def when unset.
func (c ContentConfig) TimeoutOr(def time.Duration) (time.Duration, error) {
	if c.Timeout == nil {
		return def, nil
	}
	d, err := time.ParseDuration(*c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("content.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("content.timeout must be > 0")
	}
	return d, nil
}

// LoadEnv loads the dotenv files that exist, in order. Variables already in
// the environment win.
func LoadEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env: %w", err)
	}
	return nil
}

// DefaultTemplate is written by `mindflex config` when no file exists.
func DefaultTemplate(defaultTier model.Tier, timeout time.Duration, logLevel string) string {
	return fmt.Sprintf(`# mindflex configuration
# Uncomment a value to enable it. CLI flags override config values.

[play]
# difficulty = %q          # easy, medium, hard or custom
# activity = "nback"          # Activity started by "mindflex play" without arguments
# db = ""                     # SQLite path (default under $XDG_DATA_HOME)

[settings]
# sound = true                # Speak audio stimuli when a speaker is available
# dark-mode = false
# difficulty-multiplier = 1.0 # Scales every score multiplier

[content]
# provider = "local"          # "openai" needs OPENAI_API_KEY
# model = ""                  # Chat model for the openai provider
# timeout = %q              # Remote content is abandoned after this long

[log]
# level = %q                # debug, info, warn, error

# Parameters for the custom difficulty tier, one table per activity.
# [custom.nback]
# n = 4
# interval-ms = 1800
# total-turns = 30
# multiplier = 3.0
`, defaultTier, timeout, logLevel)
}
