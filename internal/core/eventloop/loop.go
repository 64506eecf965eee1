// Package eventloop provides a headless, single-goroutine host for notice
// countdowns. Every callback runs on the goroutine that called Run, so
// callbacks never execute in parallel with each other.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/dismiss/internal/core/notice"
)

// ErrStopped is returned by Run after Stop was called.
var ErrStopped = errors.New("event loop stopped")

const defaultQueueSize = 64

// Loop is a cooperative callback queue with ticker-backed repeating timers.
// It implements notice.Scheduler.
//
// Cancelling a timer stops its ticker, but a callback already placed on the
// queue still runs. Callers rely on the notice state check to ignore it.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
	log   zerolog.Logger

	mu     sync.Mutex
	next   notice.Token
	timers map[notice.Token]chan struct{}
}

// New creates a loop with the given queue capacity. A size of zero or less
// uses a default.
func New(size int, logger zerolog.Logger) *Loop {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Loop{
		queue:  make(chan func(), size),
		done:   make(chan struct{}),
		log:    logger,
		timers: make(map[notice.Token]chan struct{}),
	}
}

// Run executes queued callbacks until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.done:
			return ErrStopped
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. It reports false when the
// loop has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Stop halts Run and every ticker. Safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() {
		close(l.done)

		l.mu.Lock()
		defer l.mu.Unlock()
		for tok, stop := range l.timers {
			close(stop)
			delete(l.timers, tok)
		}
	})
}

// ScheduleRepeating posts fn to the loop every interval until cancelled.
func (l *Loop) ScheduleRepeating(interval time.Duration, fn func()) notice.Token {
	stop := make(chan struct{})

	l.mu.Lock()
	l.next++
	tok := l.next
	l.timers[tok] = stop
	l.mu.Unlock()

	go l.runTicker(tok, interval, fn, stop)

	l.log.Debug().
		Uint64("token", uint64(tok)).
		Dur("interval", interval).
		Msg("timer scheduled")
	return tok
}

// Cancel stops the timer. Unknown or already cancelled tokens are ignored.
func (l *Loop) Cancel(tok notice.Token) {
	l.mu.Lock()
	stop, ok := l.timers[tok]
	if ok {
		delete(l.timers, tok)
	}
	l.mu.Unlock()

	if ok {
		close(stop)
		l.log.Debug().Uint64("token", uint64(tok)).Msg("timer cancelled")
	}
}

// Active returns the number of timers that have not been cancelled.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.timers)
}

func (l *Loop) runTicker(tok notice.Token, interval time.Duration, fn func(), stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-l.done:
			return
		case <-ticker.C:
			select {
			case l.queue <- fn:
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}
}
