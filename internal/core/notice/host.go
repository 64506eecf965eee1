package notice

import "time"

// Token identifies a repeating timer registered with a Scheduler.
type Token uint64

// Scheduler registers repeating callbacks with the host loop. Callbacks for a
// single notice must never run concurrently with each other.
//
// Cancel stops future firings only. A callback that the host already queued
// may still run after Cancel returns.
type Scheduler interface {
	ScheduleRepeating(interval time.Duration, fn func()) Token
	Cancel(tok Token)
}

// Sink receives visual countdown updates.
type Sink interface {
	SetProgressPercent(pct float64)
	SetSecondsLabel(secs int)
}

// Remover closes the notice on the host surface.
type Remover interface {
	CloseNotice()
}

// RemoverFunc adapts a plain function to the Remover interface.
type RemoverFunc func()

func (f RemoverFunc) CloseNotice() { f() }

type nopSink struct{}

func (nopSink) SetProgressPercent(float64) {}
func (nopSink) SetSecondsLabel(int)        {}

type nopRemover struct{}

func (nopRemover) CloseNotice() {}
