package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/dismiss/internal/core/config"
	"github.com/colonyops/dismiss/internal/core/notice"
	"github.com/colonyops/dismiss/internal/core/notify"
	"github.com/colonyops/dismiss/internal/tui"
	tuinotify "github.com/colonyops/dismiss/internal/tui/notify"
	"github.com/colonyops/dismiss/pkg/iojson"
)

type ShowCmd struct {
	flags *Flags

	messages  []string
	level     string
	permanent bool
	duration  time.Duration
	tick      time.Duration
	stream    bool
	stay      bool
	file      iojson.FileReader[[]notify.Notification]
}

// NewShowCmd creates the interactive show command.
func NewShowCmd(flags *Flags) *ShowCmd {
	return &ShowCmd{flags: flags}
}

// Register adds the show command to the application.
func (cmd *ShowCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "show",
		Usage:     "Display notices that close themselves after a countdown",
		UsageText: "dismiss show [options] [message...]",
		Description: `Opens an inline terminal view with one notice per message. Each notice
shows a progress bar and a "closes in Ns" label and disappears when the
countdown ends. Press x to close the newest notice early.

Notices can also be read as a JSON array with -f, or streamed as JSON
lines on stdin with --stream:

  echo '{"level":"success","message":"deployed"}' | dismiss show --stream`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "notice text (repeatable)",
				Destination: &cmd.messages,
			},
			&cli.StringFlag{
				Name:        "level",
				Aliases:     []string{"l"},
				Usage:       "notice level (info, success, warning, error)",
				Value:       string(notify.LevelInfo),
				Destination: &cmd.level,
			},
			&cli.BoolFlag{
				Name:        "permanent",
				Usage:       "keep notices until closed by hand",
				Destination: &cmd.permanent,
			},
			&cli.DurationFlag{
				Name:        "duration",
				Aliases:     []string{"d"},
				Usage:       "countdown length (overrides notice.duration)",
				Destination: &cmd.duration,
			},
			&cli.DurationFlag{
				Name:        "tick",
				Usage:       "progress update interval (overrides notice.tick_interval)",
				Destination: &cmd.tick,
			},
			&cli.BoolFlag{
				Name:        "stream",
				Usage:       "read notices as JSON lines from stdin",
				Destination: &cmd.stream,
			},
			&cli.BoolFlag{
				Name:        "stay",
				Usage:       "keep running after the last notice closes",
				Destination: &cmd.stay,
			},
			cmd.file.Flag(),
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *ShowCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := cmd.effectiveConfig()
	if err != nil {
		return err
	}

	initial, err := cmd.notifications(c.Args().Slice())
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("show needs an interactive terminal; use 'dismiss demo' for headless output")
	}

	if len(initial) == 0 && !cmd.stream && !cmd.stay {
		return errors.New("nothing to show: pass a message, -f, --stream or --stay")
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	var buffer *tui.NotificationBuffer

	// stdin carries notices, so keys are read from the terminal instead
	if cmd.stream || cmd.file.FromStdin() {
		in, out, err := tea.OpenTTY()
		if err != nil {
			return fmt.Errorf("open terminal for input: %w", err)
		}
		defer func() { _ = in.Close() }()
		defer func() { _ = out.Close() }()
		programOpts = append(programOpts, tea.WithInput(in))
	}

	if cmd.stream {
		buffer = tui.NewNotificationBuffer()
		go func() {
			defer buffer.Close()
			if err := readStream(ctx, os.Stdin, buffer.Push, buffer.Warnf); err != nil {
				log.Error().Err(err).Msg("notice stream failed")
				buffer.Warnf("notice stream failed: %v", err)
			}
		}()
	}

	m := tui.New(
		tui.Deps{Config: cfg, Bus: tuinotify.NewBus(cfg.Notice.HistoryLimit)},
		tui.Opts{
			Initial:       initial,
			Buffer:        buffer,
			ExitWhenEmpty: !cmd.stay && !cmd.stream,
		},
	)

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// effectiveConfig applies --duration and --tick on top of the loaded config.
func (cmd *ShowCmd) effectiveConfig() (*config.Config, error) {
	loaded, err := cmd.flags.validConfig()
	if err != nil {
		return nil, err
	}

	cfg := *loaded
	if cmd.duration != 0 {
		cfg.Notice.Duration = cmd.duration
	}
	if cmd.tick != 0 {
		cfg.Notice.TickInterval = cmd.tick
	}
	if err := notice.ValidateDurations(cfg.Notice.Duration, cfg.Notice.TickInterval); err != nil {
		return nil, fmt.Errorf("--duration/--tick: %w", err)
	}
	return &cfg, nil
}

// notifications collects notices from --message, positional args and -f.
func (cmd *ShowCmd) notifications(args []string) ([]notify.Notification, error) {
	level, err := notify.ParseLevel(cmd.level)
	if err != nil {
		return nil, fmt.Errorf("--level: %w", err)
	}

	var out []notify.Notification
	for _, msg := range append(append([]string{}, cmd.messages...), args...) {
		if strings.TrimSpace(msg) == "" {
			continue
		}
		out = append(out, notify.Notification{
			Level:     level,
			Message:   msg,
			Permanent: cmd.permanent,
		})
	}

	// Piped stdin is only consulted when nothing else was given.
	readFile := cmd.file.HasInput() && !cmd.stream
	if readFile && cmd.file.FromStdin() && len(out) > 0 {
		readFile = false
	}

	if readFile {
		fromFile, err := cmd.file.Read()
		if err != nil {
			return nil, err
		}
		for _, n := range fromFile {
			n, err := normalize(n)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
	}

	return out, nil
}

func normalize(n notify.Notification) (notify.Notification, error) {
	level, err := notify.ParseLevel(string(n.Level))
	if err != nil {
		return n, err
	}
	n.Level = level
	n.ID = 0
	return n, nil
}

// readStream decodes one notification per line from r and hands each to
// push. Blank lines are skipped. Malformed lines are logged, reported through
// warn and skipped.
func readStream(ctx context.Context, r io.Reader, push func(notify.Notification), warn func(format string, args ...any)) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line++

		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var n notify.Notification
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping malformed notice")
			warn("line %d: skipped malformed notice", line)
			continue
		}
		n, err := normalize(n)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping notice")
			warn("line %d: skipped notice: %v", line, err)
			continue
		}
		push(n)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
