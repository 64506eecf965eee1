package config

import (
	"fmt"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/dismiss/internal/core/notice"
	"github.com/colonyops/dismiss/internal/core/styles"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep checks every field and the config file itself, reporting all
// problems at once as criterio field errors. The configPath argument
// specifies the config file location to validate (empty string skips the
// file check).
func (c *Config) ValidateDeep(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		c.validateNotice(),
		c.validateTUI(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	n := c.Notice
	if n.TickInterval > 0 && n.Duration%n.TickInterval != 0 {
		warnings = append(warnings, ValidationWarning{
			Category: "Notice",
			Item:     "tick_interval",
			Message:  fmt.Sprintf("%s does not divide %s evenly; the last tick is clamped", n.TickInterval, n.Duration),
		})
	}

	if n.LabelInterval > n.Duration {
		warnings = append(warnings, ValidationWarning{
			Category: "Notice",
			Item:     "label_interval",
			Message:  fmt.Sprintf("%s exceeds the notice duration; the label refreshes once", n.LabelInterval),
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func (c *Config) validateNotice() error {
	var errs criterio.FieldErrorsBuilder
	n := c.Notice

	if err := notice.ValidateDurations(n.Duration, n.TickInterval); err != nil {
		errs = errs.Append("notice.tick_interval", err)
	}
	if n.LabelInterval <= 0 {
		errs = errs.Append("notice.label_interval", fmt.Errorf("must be positive, got %s", n.LabelInterval))
	}
	if n.MaxVisible < 1 {
		errs = errs.Append("notice.max_visible", fmt.Errorf("must be at least 1, got %d", n.MaxVisible))
	}
	if n.HistoryLimit < 1 {
		errs = errs.Append("notice.history_limit", fmt.Errorf("must be at least 1, got %d", n.HistoryLimit))
	}

	return errs.ToError()
}

func (c *Config) validateTUI() error {
	var errs criterio.FieldErrorsBuilder

	if _, ok := styles.GetPalette(c.TUI.Theme); !ok {
		errs = errs.Append("tui.theme", fmt.Errorf("unknown theme %q (available: %v)", c.TUI.Theme, styles.ThemeNames()))
	}
	if c.TUI.Width < minWidth {
		errs = errs.Append("tui.width", fmt.Errorf("must be at least %d, got %d", minWidth, c.TUI.Width))
	}

	return errs.ToError()
}
