package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/dismiss/internal/core/config"
	"github.com/colonyops/dismiss/internal/core/styles"
	"github.com/colonyops/dismiss/pkg/iojson"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates the config command group.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config commands to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "dismiss config validate [options]",
				Description: "Validates the configuration file, checking countdown timings, theme and layout.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
		},
	})

	return app
}

type validationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validationReport struct {
	Valid    bool                       `json:"valid"`
	Path     string                     `json:"path"`
	Errors   []validationIssue          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	report := cmd.validate()

	w := c.Root().Writer
	if cmd.format == "json" {
		if err := iojson.WriteWith(w, os.Stderr, report); err != nil {
			return err
		}
	} else if err := writeReport(w, report); err != nil {
		return err
	}

	if !report.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigCmd) validate() validationReport {
	cfg := cmd.flags.config()
	report := validationReport{Path: cmd.flags.ConfigPath}

	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				report.Errors = append(report.Errors, validationIssue{Field: fe.Field, Message: fe.Err.Error()})
			}
		} else {
			report.Errors = append(report.Errors, validationIssue{Field: "config", Message: err.Error()})
		}
	}

	report.Warnings = cfg.Warnings()
	report.Valid = len(report.Errors) == 0
	return report
}

func writeReport(w io.Writer, report validationReport) error {
	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format+"\n", args...)
		}
	}

	printf("%s", styles.CommandHeaderStyle.Render("Config"))
	printf("%s", styles.TextMutedStyle.Render(report.Path))
	printf("%s", styles.DividerStyle.Render("────────────────────────────────────────"))

	for _, warn := range report.Warnings {
		printf("%s %s: %s", styles.TextMutedStyle.Render("●"), warn.Item, warn.Message)
	}
	for _, issue := range report.Errors {
		printf("%s %s: %s", styles.TextErrorStyle.Render("✘"), issue.Field, issue.Message)
	}

	printf("")
	if report.Valid {
		printf("%s", styles.TextSuccessStyle.Render("✔ Configuration is valid"))
	} else {
		printf("%s", styles.TextErrorStyle.Render(fmt.Sprintf("%d error(s) found", len(report.Errors))))
	}
	return err
}
