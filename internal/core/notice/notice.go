// Package notice implements the countdown that auto-dismisses a notice.
//
// A countdown drives two repeating timers registered with the host: a
// fine-grained tick that depletes the progress indicator and a coarse tick
// that refreshes the whole-seconds label. Both timers are released together
// on every terminal transition and the removal sink fires at most once.
package notice

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLabelInterval is the refresh rate of the seconds label.
const DefaultLabelInterval = time.Second

// State is the lifecycle state of a countdown.
type State int

const (
	StateRunning State = iota
	StateCancelledByUser
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelledByUser:
		return "cancelled"
	case StateExpired:
		return "expired"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further mutation can happen in state s.
func (s State) Terminal() bool {
	return s != StateRunning
}

// NoticeTimer is the countdown record owned by a single Handle.
type NoticeTimer struct {
	Total     time.Duration
	Tick      time.Duration
	Remaining time.Duration
	State     State
}

// ProgressFraction returns Remaining/Total in [0, 1].
func (t NoticeTimer) ProgressFraction() float64 {
	if t.Total <= 0 {
		return 0
	}
	f := float64(t.Remaining) / float64(t.Total)
	return min(max(f, 0), 1)
}

// ProgressPercent returns the progress fraction scaled to [0, 100].
func (t NoticeTimer) ProgressPercent() float64 {
	return t.ProgressFraction() * 100
}

// SecondsLeft returns the remaining time rounded up to whole seconds.
func (t NoticeTimer) SecondsLeft() int {
	if t.Remaining <= 0 {
		return 0
	}
	return int((t.Remaining + time.Second - 1) / time.Second)
}

// Options wires a countdown to its host.
type Options struct {
	Scheduler Scheduler
	Sink      Sink
	Remover   Remover

	// LabelInterval overrides DefaultLabelInterval. It is capped at the
	// total duration.
	LabelInterval time.Duration

	Logger *zerolog.Logger
}

// Handle controls a running countdown.
type Handle struct {
	timer   NoticeTimer
	sched   Scheduler
	sink    Sink
	remover Remover
	log     zerolog.Logger

	progressTok Token
	labelTok    Token

	// last value handed to SetSecondsLabel
	label int
}

// Start validates the durations and begins the countdown immediately. The
// sink receives the initial 100% progress and seconds label before Start
// returns. On error no timers are scheduled.
func Start(total, tick time.Duration, opts Options) (*Handle, error) {
	if err := ValidateDurations(total, tick); err != nil {
		return nil, err
	}
	if opts.Scheduler == nil {
		return nil, fmt.Errorf("start notice: scheduler is required")
	}

	h := &Handle{
		timer: NoticeTimer{
			Total:     total,
			Tick:      tick,
			Remaining: total,
			State:     StateRunning,
		},
		sched:   opts.Scheduler,
		sink:    opts.Sink,
		remover: opts.Remover,
		log:     zerolog.Nop(),
	}
	if h.sink == nil {
		h.sink = nopSink{}
	}
	if h.remover == nil {
		h.remover = nopRemover{}
	}
	if opts.Logger != nil {
		h.log = *opts.Logger
	}

	labelEvery := opts.LabelInterval
	if labelEvery <= 0 {
		labelEvery = DefaultLabelInterval
	}
	labelEvery = min(labelEvery, total)

	h.sink.SetProgressPercent(h.timer.ProgressPercent())
	h.label = h.timer.SecondsLeft()
	h.sink.SetSecondsLabel(h.label)

	h.progressTok = h.sched.ScheduleRepeating(tick, h.onTick)
	h.labelTok = h.sched.ScheduleRepeating(labelEvery, h.onLabel)

	h.log.Debug().
		Dur("total", total).
		Dur("tick", tick).
		Dur("label_interval", labelEvery).
		Msg("notice countdown started")

	return h, nil
}

// Timer returns a snapshot of the countdown record.
func (h *Handle) Timer() NoticeTimer {
	return h.timer
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	return h.timer.State
}

// Cancel is the user-initiated close. While running it releases both timers
// and then closes the notice through the Remover. Calls after a terminal
// transition are no-ops.
func (h *Handle) Cancel() {
	if !h.terminate(StateCancelledByUser) {
		return
	}
	h.remover.CloseNotice()
}

// Closed records that the host already removed the notice through its own
// close action. The countdown is released without calling the Remover.
// Calls after a terminal transition are no-ops.
func (h *Handle) Closed() {
	h.terminate(StateCancelledByUser)
}

func (h *Handle) onTick() {
	if h.timer.State != StateRunning {
		return
	}

	h.timer.Remaining = max(h.timer.Remaining-h.timer.Tick, 0)
	h.sink.SetProgressPercent(h.timer.ProgressPercent())

	if h.timer.Remaining == 0 {
		if h.terminate(StateExpired) {
			h.remover.CloseNotice()
		}
		return
	}

	// Keep the label in step with Remaining when the label timer runs late.
	h.publishLabel()
}

func (h *Handle) onLabel() {
	if h.timer.State != StateRunning {
		return
	}
	h.publishLabel()
}

// publishLabel sends the whole-seconds label when it differs from the last
// value sent.
func (h *Handle) publishLabel() {
	secs := h.timer.SecondsLeft()
	if secs == h.label {
		return
	}
	h.label = secs
	h.sink.SetSecondsLabel(secs)
}

// terminate moves a running countdown into the terminal state and cancels
// both timers in the same call. It reports whether the transition happened.
func (h *Handle) terminate(to State) bool {
	if h.timer.State != StateRunning {
		return false
	}
	h.timer.State = to

	h.sched.Cancel(h.progressTok)
	h.sched.Cancel(h.labelTok)

	h.log.Debug().
		Stringer("state", to).
		Dur("remaining", h.timer.Remaining).
		Msg("notice countdown finished")
	return true
}
