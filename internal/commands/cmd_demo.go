package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/progress"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/dismiss/internal/core/eventloop"
	"github.com/colonyops/dismiss/internal/core/logging"
	"github.com/colonyops/dismiss/internal/core/notice"
	"github.com/colonyops/dismiss/internal/core/styles"
	"github.com/colonyops/dismiss/pkg/iojson"
)

type DemoCmd struct {
	flags *Flags

	message     string
	duration    time.Duration
	tick        time.Duration
	cancelAfter time.Duration
	format      string
}

// NewDemoCmd creates the headless demo command.
func NewDemoCmd(flags *Flags) *DemoCmd {
	return &DemoCmd{flags: flags}
}

// Register adds the demo command to the application.
func (cmd *DemoCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "demo",
		Usage:     "Run a single countdown without a UI and print its updates",
		UsageText: "dismiss demo [options]",
		Description: `Runs one notice countdown on a headless event loop and prints every
progress and seconds-label update as it happens. Use --cancel-after to close
the notice early the way a user would.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "message",
				Aliases:     []string{"m"},
				Usage:       "notice text",
				Value:       "Saved",
				Destination: &cmd.message,
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
			&cli.DurationFlag{
				Name:        "cancel-after",
				Usage:       "close the notice after this long (0 lets it expire)",
				Destination: &cmd.cancelAfter,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DemoCmd) run(ctx context.Context, c *cli.Command) error {
	if cmd.format != "text" && cmd.format != "json" {
		return fmt.Errorf("unsupported format %q (text, json)", cmd.format)
	}

	loaded, err := cmd.flags.validConfig()
	if err != nil {
		return err
	}

	cfg := loaded.Notice
	if cmd.duration != 0 {
		cfg.Duration = cmd.duration
	}
	if cmd.tick != 0 {
		cfg.TickInterval = cmd.tick
	}

	_, err = runDemo(ctx, c.Root().Writer, demoOptions{
		Message:       cmd.message,
		Duration:      cfg.Duration,
		Tick:          cfg.TickInterval,
		LabelInterval: cfg.LabelInterval,
		CancelAfter:   cmd.cancelAfter,
		JSON:          cmd.format == "json",
	})
	return err
}

type demoOptions struct {
	Message       string
	Duration      time.Duration
	Tick          time.Duration
	LabelInterval time.Duration
	CancelAfter   time.Duration
	JSON          bool
}

// demoEvent is one line of demo output.
type demoEvent struct {
	ElapsedMS int64    `json:"elapsed_ms"`
	Event     string   `json:"event"`
	Message   string   `json:"message,omitempty"`
	Percent   *float64 `json:"percent,omitempty"`
	Seconds   *int     `json:"seconds,omitempty"`
	State     string   `json:"state,omitempty"`
}

// demoPrinter is the notice.Sink and notice.Remover of a demo run. It only
// runs on the loop goroutine.
type demoPrinter struct {
	w      io.Writer
	json   bool
	start  time.Time
	handle *notice.Handle
	loop   *eventloop.Loop
	bar    progress.Model
	err    error
}

func (p *demoPrinter) SetProgressPercent(pct float64) {
	p.emit(demoEvent{Event: "progress", Percent: &pct})
}

func (p *demoPrinter) SetSecondsLabel(secs int) {
	p.emit(demoEvent{Event: "label", Seconds: &secs})
}

func (p *demoPrinter) CloseNotice() {
	state := notice.StateExpired
	if p.handle != nil {
		state = p.handle.State()
	}
	p.emit(demoEvent{Event: "closed", State: state.String()})
	p.loop.Stop()
}

func (p *demoPrinter) emit(ev demoEvent) {
	if p.err != nil {
		return
	}
	ev.ElapsedMS = time.Since(p.start).Milliseconds()

	if p.json {
		p.err = iojson.WriteLine(p.w, ev)
		return
	}

	elapsed := styles.TextMutedStyle.Render(fmt.Sprintf("%6.2fs", float64(ev.ElapsedMS)/1000))
	var line string
	switch ev.Event {
	case "start":
		line = fmt.Sprintf("%s %s", styles.CommandHeaderStyle.Render("start"), ev.Message)
	case "progress":
		line = fmt.Sprintf("progress %5.1f%% %s", *ev.Percent, p.bar.ViewAs(*ev.Percent/100))
	case "label":
		line = fmt.Sprintf("label    closes in %ds", *ev.Seconds)
	case "closed":
		style := styles.TextSuccessStyle
		if ev.State == notice.StateCancelledByUser.String() {
			style = styles.TextErrorStyle
		}
		line = "closed   " + style.Render(ev.State)
	}
	_, p.err = fmt.Fprintf(p.w, "%s %s\n", elapsed, line)
}

// runDemo drives one countdown on an event loop until the notice closes or
// ctx is cancelled, and returns the final state.
func runDemo(ctx context.Context, w io.Writer, opts demoOptions) (notice.State, error) {
	if err := notice.ValidateDurations(opts.Duration, opts.Tick); err != nil {
		return notice.StateRunning, fmt.Errorf("--duration/--tick: %w", err)
	}

	ctx = logging.WithHost(ctx, "loop")
	logger := logging.Component("demo")

	loop := eventloop.New(0, logging.Component("eventloop"))
	p := &demoPrinter{
		w:     w,
		json:  opts.JSON,
		start: time.Now(),
		loop:  loop,
		bar: progress.New(
			progress.WithColors(styles.CurrentPalette.Primary),
			progress.WithoutPercentage(),
			progress.WithWidth(20),
		),
	}

	started := make(chan error, 1)
	loop.Post(func() {
		p.emit(demoEvent{Event: "start", Message: opts.Message})

		nlog := logging.Notice(ctx, 1)
		h, err := notice.Start(opts.Duration, opts.Tick, notice.Options{
			Scheduler:     loop,
			Sink:          p,
			Remover:       p,
			LabelInterval: opts.LabelInterval,
			Logger:        &nlog,
		})
		p.handle = h
		started <- err
		if err != nil {
			loop.Stop()
		}
	})

	if opts.CancelAfter > 0 {
		timer := time.AfterFunc(opts.CancelAfter, func() {
			loop.Post(func() {
				if p.handle != nil {
					logger.Debug().Ctx(ctx).Msg("simulating user close")
					p.handle.Cancel()
				}
			})
		})
		defer timer.Stop()
	}

	runErr := loop.Run(ctx)

	select {
	case err := <-started:
		if err != nil {
			return notice.StateRunning, err
		}
	default:
	}

	if p.handle == nil {
		return notice.StateRunning, runErr
	}

	state := p.handle.State()
	if !errors.Is(runErr, eventloop.ErrStopped) {
		// Interrupted: release the countdown without a close event.
		p.handle.Closed()
		logger.Info().Ctx(ctx).Err(runErr).Msg("demo interrupted")
		return state, nil
	}
	if p.err != nil {
		return state, fmt.Errorf("write demo output: %w", p.err)
	}

	log.Debug().Ctx(ctx).Stringer("state", state).Msg("demo finished")
	return state, nil
}
