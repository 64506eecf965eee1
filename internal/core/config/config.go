// Package config handles configuration loading and validation for dismiss.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/dismiss/internal/core/notice"
	"github.com/colonyops/dismiss/internal/core/styles"
)

// Defaults for notice countdowns.
const (
	DefaultDuration      = 7 * time.Second
	DefaultTickInterval  = 100 * time.Millisecond
	DefaultLabelInterval = notice.DefaultLabelInterval
	DefaultMaxVisible    = 5
	DefaultHistoryLimit  = 50
	DefaultWidth         = 50

	minWidth = 20
)

// Config holds the application configuration.
type Config struct {
	Notice NoticeConfig `yaml:"notice"`
	TUI    TUIConfig    `yaml:"tui"`
}

// NoticeConfig controls countdown timing and the notice stack.
type NoticeConfig struct {
	Duration      time.Duration `yaml:"duration"`       // total visible lifetime
	TickInterval  time.Duration `yaml:"tick_interval"`  // progress bar granularity
	LabelInterval time.Duration `yaml:"label_interval"` // seconds label refresh
	MaxVisible    int           `yaml:"max_visible"`    // oldest notices are evicted beyond this
	HistoryLimit  int           `yaml:"history_limit"`  // in-memory notification history
	Markdown      bool          `yaml:"markdown"`       // render messages as markdown
}

// TUIConfig holds interactive display settings.
type TUIConfig struct {
	Theme string `yaml:"theme"`
	Width int    `yaml:"width"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Notice: NoticeConfig{
			Duration:      DefaultDuration,
			TickInterval:  DefaultTickInterval,
			LabelInterval: DefaultLabelInterval,
			MaxVisible:    DefaultMaxVisible,
			HistoryLimit:  DefaultHistoryLimit,
		},
		TUI: TUIConfig{
			Theme: styles.DefaultTheme,
			Width: DefaultWidth,
		},
	}
}

// Load reads configuration from the given path and validates it.
// If configPath is empty or doesn't exist, returns defaults.
func Load(configPath string) (*Config, error) {
	cfg, err := Parse(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Parse reads configuration from the given path and fills in defaults
// without validating the values, so tooling can report every problem.
func Parse(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// Apply defaults for zero values
	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Notice.Duration == 0 {
		c.Notice.Duration = defaults.Notice.Duration
	}
	if c.Notice.TickInterval == 0 {
		c.Notice.TickInterval = defaults.Notice.TickInterval
	}
	if c.Notice.LabelInterval == 0 {
		c.Notice.LabelInterval = defaults.Notice.LabelInterval
	}
	if c.Notice.MaxVisible == 0 {
		c.Notice.MaxVisible = defaults.Notice.MaxVisible
	}
	if c.Notice.HistoryLimit == 0 {
		c.Notice.HistoryLimit = defaults.Notice.HistoryLimit
	}
	if c.TUI.Theme == "" {
		c.TUI.Theme = defaults.TUI.Theme
	}
	if c.TUI.Width == 0 {
		c.TUI.Width = defaults.TUI.Width
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := notice.ValidateDurations(c.Notice.Duration, c.Notice.TickInterval); err != nil {
		return fmt.Errorf("notice.duration/notice.tick_interval: %w", err)
	}

	if c.Notice.LabelInterval <= 0 {
		return fmt.Errorf("notice.label_interval must be positive")
	}

	if c.Notice.MaxVisible < 1 {
		return fmt.Errorf("notice.max_visible must be at least 1")
	}

	if c.Notice.HistoryLimit < 1 {
		return fmt.Errorf("notice.history_limit must be at least 1")
	}

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		return fmt.Errorf("tui.theme %q is not a built-in theme (available: %v)", c.TUI.Theme, styles.ThemeNames())
	}

	if c.TUI.Width < minWidth {
		return fmt.Errorf("tui.width must be at least %d", minWidth)
	}

	return nil
}
