package eventloop

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/dismiss/internal/core/notice"
)

func startLoop(t *testing.T) *Loop {
	t.Helper()

	l := New(0, zerolog.Nop())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	t.Cleanup(func() {
		l.Stop()
		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrStopped)
		case <-time.After(time.Second):
			t.Error("loop did not stop")
		}
	})
	return l
}

// onLoop runs fn on the loop goroutine and waits for it to finish.
func onLoop[T any](t *testing.T, l *Loop, fn func() T) T {
	t.Helper()

	ch := make(chan T, 1)
	require.True(t, l.Post(func() { ch <- fn() }))

	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("loop did not run posted callback")
	}
	var zero T
	return zero
}

func TestLoop_Post_runs_in_order(t *testing.T) {
	l := startLoop(t)

	var got []int
	for i := range 5 {
		require.True(t, l.Post(func() { got = append(got, i) }))
	}

	out := onLoop(t, l, func() []int { return append([]int(nil), got...) })
	assert.Equal(t, []int{0, 1, 2, 3, 4}, out)
}

func TestLoop_Post_after_stop(t *testing.T) {
	l := New(1, zerolog.Nop())
	l.Stop()
	l.Stop()

	assert.False(t, l.Post(func() {}))
}

func TestLoop_Run_returns_on_context_cancel(t *testing.T) {
	l := New(0, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()
	cancel()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.False(t, l.Post(func() {}), "cancelled loop must reject new work")
}

func TestLoop_Cancel_stops_future_firings(t *testing.T) {
	l := startLoop(t)

	fired := make(chan struct{}, 100)
	count := 0
	tok := l.ScheduleRepeating(5*time.Millisecond, func() {
		count++
		fired <- struct{}{}
	})
	assert.Equal(t, 1, l.Active())

	for range 3 {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	}

	onLoop(t, l, func() struct{} { l.Cancel(tok); return struct{}{} })
	assert.Equal(t, 0, l.Active())

	// Drain anything that was queued before the cancel.
	before := onLoop(t, l, func() int { return count })
	time.Sleep(30 * time.Millisecond)
	after := onLoop(t, l, func() int { return count })

	assert.LessOrEqual(t, after-before, 1, "at most one in-flight callback may run after cancel")

	l.Cancel(tok)
	l.Cancel(notice.Token(999))
}

func TestLoop_drives_notice_to_expiry(t *testing.T) {
	l := startLoop(t)

	removed := make(chan struct{}, 2)
	handle := onLoop(t, l, func() *notice.Handle {
		h, err := notice.Start(60*time.Millisecond, 10*time.Millisecond, notice.Options{
			Scheduler:     l,
			LabelInterval: 20 * time.Millisecond,
			Remover:       notice.RemoverFunc(func() { removed <- struct{}{} }),
		})
		require.NoError(t, err)
		return h
	})

	select {
	case <-removed:
	case <-time.After(2 * time.Second):
		t.Fatal("notice never expired")
	}

	timer := onLoop(t, l, handle.Timer)
	assert.Equal(t, notice.StateExpired, timer.State)
	assert.Equal(t, time.Duration(0), timer.Remaining)
	assert.Equal(t, 0, l.Active(), "both timers released on expiry")

	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, removed, "removal must happen exactly once")
}

func TestLoop_cancelled_notice_ignores_queued_ticks(t *testing.T) {
	l := startLoop(t)

	removals := 0
	handle := onLoop(t, l, func() *notice.Handle {
		h, err := notice.Start(time.Second, 5*time.Millisecond, notice.Options{
			Scheduler: l,
			Remover:   notice.RemoverFunc(func() { removals++ }),
		})
		require.NoError(t, err)
		return h
	})

	time.Sleep(25 * time.Millisecond)
	remaining := onLoop(t, l, func() time.Duration {
		handle.Cancel()
		return handle.Timer().Remaining
	})

	time.Sleep(30 * time.Millisecond)
	timer := onLoop(t, l, handle.Timer)

	assert.Equal(t, notice.StateCancelledByUser, timer.State)
	assert.Equal(t, remaining, timer.Remaining)
	assert.Equal(t, 1, onLoop(t, l, func() int { return removals }))
	assert.Equal(t, 0, l.Active())
}
