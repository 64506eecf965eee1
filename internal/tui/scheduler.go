package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/dismiss/internal/core/notice"
)

// timerFiredMsg is delivered by tea.Tick when a repeating timer elapses.
type timerFiredMsg struct {
	token notice.Token
}

type teaTimer struct {
	interval time.Duration
	due      time.Time
	fn       func()
}

// teaScheduler implements notice.Scheduler on top of the Bubble Tea update
// loop. Each registration becomes a chain of tea.Tick commands; commands
// produced while handling a message are collected and returned by Flush.
//
// Timers run at a fixed rate: every re-arm targets the next multiple of the
// interval from registration, so time spent in the update loop does not
// accumulate as drift.
//
// A tick that was already issued when its timer is cancelled still arrives
// as a timerFiredMsg and is dropped by Fire.
type teaScheduler struct {
	now     func() time.Time
	next    notice.Token
	timers  map[notice.Token]teaTimer
	pending []tea.Cmd
}

func newTeaScheduler() *teaScheduler {
	return &teaScheduler{
		now:    time.Now,
		timers: make(map[notice.Token]teaTimer),
	}
}

func (s *teaScheduler) ScheduleRepeating(interval time.Duration, fn func()) notice.Token {
	s.next++
	tok := s.next
	s.timers[tok] = teaTimer{interval: interval, due: s.now().Add(interval), fn: fn}
	s.pending = append(s.pending, tickCmd(tok, interval))
	return tok
}

func (s *teaScheduler) Cancel(tok notice.Token) {
	delete(s.timers, tok)
}

// Fire runs the callback for tok and re-arms the timer unless the callback
// cancelled it. It reports whether a callback ran.
func (s *teaScheduler) Fire(tok notice.Token) bool {
	t, ok := s.timers[tok]
	if !ok {
		return false
	}

	t.fn()

	if _, still := s.timers[tok]; !still {
		return true
	}

	now := s.now()
	t.due = t.due.Add(t.interval)
	if t.due.Before(now) {
		// Fell behind by more than a whole interval; skip the missed
		// deadlines instead of bursting through them.
		t.due = now
	}
	s.timers[tok] = t
	s.pending = append(s.pending, tickCmd(tok, t.due.Sub(now)))
	return true
}

// Flush returns the tick commands queued since the last call.
func (s *teaScheduler) Flush() tea.Cmd {
	if len(s.pending) == 0 {
		return nil
	}
	cmds := s.pending
	s.pending = nil
	return tea.Batch(cmds...)
}

// Active returns the number of live timers.
func (s *teaScheduler) Active() int {
	return len(s.timers)
}

func tickCmd(tok notice.Token, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{token: tok}
	})
}
