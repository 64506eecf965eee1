package notice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTimer struct {
	interval time.Duration
	fn       func()
	active   bool
}

// fakeScheduler records registrations and lets tests fire callbacks by hand,
// including callbacks whose timer was already cancelled.
type fakeScheduler struct {
	next      Token
	timers    map[Token]*fakeTimer
	cancelled []Token
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{timers: make(map[Token]*fakeTimer)}
}

func (s *fakeScheduler) ScheduleRepeating(interval time.Duration, fn func()) Token {
	s.next++
	s.timers[s.next] = &fakeTimer{interval: interval, fn: fn, active: true}
	return s.next
}

func (s *fakeScheduler) Cancel(tok Token) {
	if t, ok := s.timers[tok]; ok {
		t.active = false
	}
	s.cancelled = append(s.cancelled, tok)
}

func (s *fakeScheduler) active() int {
	n := 0
	for _, t := range s.timers {
		if t.active {
			n++
		}
	}
	return n
}

// tokenFor returns the token registered with the given interval.
func (s *fakeScheduler) tokenFor(t *testing.T, interval time.Duration) Token {
	t.Helper()
	for tok, ft := range s.timers {
		if ft.interval == interval {
			return tok
		}
	}
	t.Fatalf("no timer registered with interval %s", interval)
	return 0
}

// fire runs an active timer's callback and reports whether it ran.
func (s *fakeScheduler) fire(tok Token) bool {
	t, ok := s.timers[tok]
	if !ok || !t.active {
		return false
	}
	t.fn()
	return true
}

// fireInFlight runs the callback regardless of cancellation, as if the host
// had queued it before Cancel.
func (s *fakeScheduler) fireInFlight(tok Token) {
	s.timers[tok].fn()
}

type recordingSink struct {
	progress []float64
	labels   []int
}

func (s *recordingSink) SetProgressPercent(pct float64) { s.progress = append(s.progress, pct) }
func (s *recordingSink) SetSecondsLabel(secs int)       { s.labels = append(s.labels, secs) }

type countingRemover struct{ calls int }

func (r *countingRemover) CloseNotice() { r.calls++ }

type harness struct {
	sched   *fakeScheduler
	sink    *recordingSink
	remover *countingRemover
	handle  *Handle
	tick    Token
	label   Token
}

func startHarness(t *testing.T, total, tick time.Duration) *harness {
	t.Helper()

	h := &harness{
		sched:   newFakeScheduler(),
		sink:    &recordingSink{},
		remover: &countingRemover{},
	}

	handle, err := Start(total, tick, Options{
		Scheduler: h.sched,
		Sink:      h.sink,
		Remover:   h.remover,
	})
	require.NoError(t, err)
	h.handle = handle
	h.tick = handle.progressTok
	h.label = handle.labelTok
	return h
}

func TestStart_schedules_two_timers(t *testing.T) {
	h := startHarness(t, 7*time.Second, 100*time.Millisecond)

	assert.Equal(t, 2, h.sched.active())
	assert.Equal(t, h.tick, h.sched.tokenFor(t, 100*time.Millisecond))
	assert.Equal(t, h.label, h.sched.tokenFor(t, time.Second))
	assert.Equal(t, []float64{100}, h.sink.progress)
	assert.Equal(t, []int{7}, h.sink.labels)
	assert.Equal(t, StateRunning, h.handle.State())
}

func TestStart_label_interval_capped_at_total(t *testing.T) {
	sched := newFakeScheduler()
	_, err := Start(500*time.Millisecond, 100*time.Millisecond, Options{Scheduler: sched})
	require.NoError(t, err)

	sched.tokenFor(t, 500*time.Millisecond)
}

func TestStart_invalid_durations(t *testing.T) {
	tests := []struct {
		name  string
		total time.Duration
		tick  time.Duration
	}{
		{name: "zero total", total: 0, tick: 100 * time.Millisecond},
		{name: "zero tick", total: 7 * time.Second, tick: 0},
		{name: "negative tick", total: 7 * time.Second, tick: -time.Millisecond},
		{name: "negative total", total: -time.Second, tick: 100 * time.Millisecond},
		{name: "tick exceeds total", total: time.Second, tick: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched := newFakeScheduler()
			h, err := Start(tt.total, tt.tick, Options{Scheduler: sched})

			require.Error(t, err)
			assert.Nil(t, h)
			assert.ErrorIs(t, err, ErrInvalidDuration)

			var durErr *DurationError
			require.True(t, errors.As(err, &durErr))
			assert.Equal(t, tt.total, durErr.Total)
			assert.Equal(t, tt.tick, durErr.Tick)
			assert.Empty(t, sched.timers, "no timers may be scheduled on error")
		})
	}
}

func TestStart_requires_scheduler(t *testing.T) {
	_, err := Start(time.Second, 100*time.Millisecond, Options{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidDuration)
}

func TestStart_tick_equal_to_total(t *testing.T) {
	h := startHarness(t, time.Second, time.Second)

	require.True(t, h.sched.fire(h.tick))

	assert.Equal(t, StateExpired, h.handle.State())
	assert.Equal(t, 1, h.remover.calls)
}

func TestCountdown_expires_after_total_over_tick(t *testing.T) {
	cases := []struct {
		total time.Duration
		tick  time.Duration
	}{
		{7 * time.Second, 100 * time.Millisecond},
		{5 * time.Second, 250 * time.Millisecond},
		{3 * time.Second, time.Second},
		{1500 * time.Millisecond, 50 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.total.String()+"/"+tc.tick.String(), func(t *testing.T) {
			h := startHarness(t, tc.total, tc.tick)

			ticks := 0
			for h.sched.fire(h.tick) {
				ticks++
				if ticks > 10_000 {
					t.Fatal("countdown never expired")
				}
			}

			assert.Equal(t, int(tc.total/tc.tick), ticks)
			assert.Equal(t, StateExpired, h.handle.State())
			assert.Equal(t, 0.0, h.handle.Timer().ProgressFraction())
			assert.Equal(t, 0.0, h.sink.progress[len(h.sink.progress)-1])
			assert.Equal(t, 1, h.remover.calls)
		})
	}
}

func TestCountdown_scenario_expiry(t *testing.T) {
	h := startHarness(t, 7000*time.Millisecond, 100*time.Millisecond)

	for i := range 70 {
		require.True(t, h.sched.fire(h.tick), "tick %d should run", i+1)
		if (i+1)%10 == 0 {
			h.sched.fire(h.label)
		}
	}

	timer := h.handle.Timer()
	assert.Equal(t, StateExpired, timer.State)
	assert.Equal(t, time.Duration(0), timer.Remaining)
	assert.Equal(t, 0.0, timer.ProgressFraction())
	assert.Equal(t, 1, h.remover.calls)
	assert.Equal(t, 0, h.sched.active(), "both timers must be released on expiry")
	assert.ElementsMatch(t, []Token{h.tick, h.label}, h.sched.cancelled)

	// 7..1 from the label timer; the final expiry tick does not refresh it.
	assert.Equal(t, []int{7, 6, 5, 4, 3, 2, 1}, h.sink.labels)
}

func TestLabel_timer_running_ahead_of_progress(t *testing.T) {
	h := startHarness(t, 7*time.Second, 100*time.Millisecond)

	for range 9 {
		require.True(t, h.sched.fire(h.tick))
	}
	// The label timer reaches the 1s mark while Remaining is still 6.1s.
	require.True(t, h.sched.fire(h.label))
	assert.Equal(t, []int{7}, h.sink.labels)

	require.True(t, h.sched.fire(h.tick))
	assert.Equal(t, 6*time.Second, h.handle.Timer().Remaining)
	assert.Equal(t, []int{7, 6}, h.sink.labels, "label follows the tick that crosses the second")

	require.True(t, h.sched.fire(h.label))
	assert.Equal(t, []int{7, 6}, h.sink.labels, "unchanged label is not republished")
}

func TestLabel_follows_ticks_without_label_timer(t *testing.T) {
	h := startHarness(t, 3*time.Second, 500*time.Millisecond)

	for h.sched.fire(h.tick) {
	}

	assert.Equal(t, StateExpired, h.handle.State())
	assert.Equal(t, []int{3, 2, 1}, h.sink.labels)
}

func TestCountdown_scenario_cancel_after_twenty_ticks(t *testing.T) {
	h := startHarness(t, 7000*time.Millisecond, 100*time.Millisecond)

	for range 20 {
		require.True(t, h.sched.fire(h.tick))
	}

	h.handle.Cancel()

	timer := h.handle.Timer()
	assert.Equal(t, StateCancelledByUser, timer.State)
	assert.Equal(t, 5000*time.Millisecond, timer.Remaining)
	assert.Equal(t, 1, h.remover.calls)
	assert.Equal(t, 0, h.sched.active())

	assert.False(t, h.sched.fire(h.tick), "cancelled timer must not fire")
	assert.False(t, h.sched.fire(h.label), "cancelled timer must not fire")
	assert.Equal(t, 5000*time.Millisecond, h.handle.Timer().Remaining)
	assert.Equal(t, 1, h.remover.calls)
}

func TestCancel_releases_both_timers_together(t *testing.T) {
	h := startHarness(t, 7*time.Second, 100*time.Millisecond)

	h.handle.Cancel()

	assert.Equal(t, 0, h.sched.active())
	assert.Len(t, h.sched.cancelled, 2)
	assert.ElementsMatch(t, []Token{h.tick, h.label}, h.sched.cancelled)
}

func TestCancel_idempotent(t *testing.T) {
	once := startHarness(t, 7*time.Second, 100*time.Millisecond)
	once.handle.Cancel()

	twice := startHarness(t, 7*time.Second, 100*time.Millisecond)
	twice.handle.Cancel()
	twice.handle.Cancel()

	assert.Equal(t, once.handle.Timer(), twice.handle.Timer())
	assert.Equal(t, once.remover.calls, twice.remover.calls)
	assert.Equal(t, once.sched.cancelled, twice.sched.cancelled, "timers cancelled exactly once")
}

func TestCancel_after_expiry_is_noop(t *testing.T) {
	h := startHarness(t, time.Second, 500*time.Millisecond)
	h.sched.fire(h.tick)
	h.sched.fire(h.tick)
	require.Equal(t, StateExpired, h.handle.State())

	h.handle.Cancel()
	h.handle.Closed()

	assert.Equal(t, StateExpired, h.handle.State())
	assert.Equal(t, 1, h.remover.calls)
	assert.Len(t, h.sched.cancelled, 2)
}

func TestInFlightTick_after_cancel_is_noop(t *testing.T) {
	h := startHarness(t, 7*time.Second, 100*time.Millisecond)
	for range 5 {
		h.sched.fire(h.tick)
	}

	h.handle.Cancel()
	before := h.handle.Timer()
	progressUpdates := len(h.sink.progress)
	labelUpdates := len(h.sink.labels)

	h.sched.fireInFlight(h.tick)
	h.sched.fireInFlight(h.label)

	assert.Equal(t, before, h.handle.Timer())
	assert.Len(t, h.sink.progress, progressUpdates)
	assert.Len(t, h.sink.labels, labelUpdates)
	assert.Equal(t, 1, h.remover.calls)
}

func TestInFlightTick_after_expiry_is_noop(t *testing.T) {
	h := startHarness(t, time.Second, 500*time.Millisecond)
	h.sched.fire(h.tick)
	h.sched.fire(h.tick)
	require.Equal(t, StateExpired, h.handle.State())

	h.sched.fireInFlight(h.tick)
	h.sched.fireInFlight(h.label)

	assert.Equal(t, time.Duration(0), h.handle.Timer().Remaining)
	assert.Equal(t, 1, h.remover.calls)
}

func TestClosed_does_not_call_remover(t *testing.T) {
	h := startHarness(t, 7*time.Second, 100*time.Millisecond)

	h.handle.Closed()

	assert.Equal(t, StateCancelledByUser, h.handle.State())
	assert.Equal(t, 0, h.remover.calls)
	assert.Equal(t, 0, h.sched.active())

	h.handle.Cancel()
	assert.Equal(t, 0, h.remover.calls, "cancel after host close must not remove again")
}

func TestRemover_runs_after_timers_cancelled(t *testing.T) {
	sched := newFakeScheduler()
	var activeAtRemoval int

	h, err := Start(time.Second, 500*time.Millisecond, Options{
		Scheduler: sched,
		Remover: RemoverFunc(func() {
			activeAtRemoval = sched.active()
		}),
	})
	require.NoError(t, err)

	h.Cancel()

	assert.Equal(t, 0, activeAtRemoval)
}

func TestTick_uneven_division_clamps_to_zero(t *testing.T) {
	h := startHarness(t, time.Second, 300*time.Millisecond)

	ticks := 0
	for h.sched.fire(h.tick) {
		ticks++
	}

	assert.Equal(t, 4, ticks)
	assert.Equal(t, time.Duration(0), h.handle.Timer().Remaining)
	for _, p := range h.sink.progress {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestNoticeTimer_SecondsLeft(t *testing.T) {
	tests := []struct {
		remaining time.Duration
		want      int
	}{
		{remaining: 7000 * time.Millisecond, want: 7},
		{remaining: 1001 * time.Millisecond, want: 2},
		{remaining: 1000 * time.Millisecond, want: 1},
		{remaining: 999 * time.Millisecond, want: 1},
		{remaining: time.Millisecond, want: 1},
		{remaining: 0, want: 0},
	}

	for _, tt := range tests {
		timer := NoticeTimer{Total: 7 * time.Second, Remaining: tt.remaining}
		assert.Equal(t, tt.want, timer.SecondsLeft(), "remaining=%s", tt.remaining)
	}
}

func TestNoticeTimer_ProgressFraction(t *testing.T) {
	timer := NoticeTimer{Total: 7 * time.Second, Remaining: 3500 * time.Millisecond}
	assert.InDelta(t, 0.5, timer.ProgressFraction(), 1e-9)
	assert.InDelta(t, 50.0, timer.ProgressPercent(), 1e-9)

	timer.Remaining = 8 * time.Second
	assert.Equal(t, 1.0, timer.ProgressFraction())

	timer.Remaining = -time.Second
	assert.Equal(t, 0.0, timer.ProgressFraction())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "cancelled", StateCancelledByUser.String())
	assert.Equal(t, "expired", StateExpired.String())
	assert.False(t, StateRunning.Terminal())
	assert.True(t, StateExpired.Terminal())
}
