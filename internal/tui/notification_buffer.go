package tui

import (
	"fmt"
	"sync"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/dismiss/internal/core/notify"
)

// drainNotificationsMsg signals that buffered notifications are ready.
type drainNotificationsMsg struct{}

// bufferClosedMsg signals that the producer finished and everything it
// pushed has been drained.
type bufferClosedMsg struct{}

// NotificationBuffer hands notifications produced on other goroutines to the
// update loop. Pushes coalesce into a single drain signal.
type NotificationBuffer struct {
	mu            sync.Mutex
	notifications []notify.Notification
	signal        chan struct{}
	done          chan struct{}
	closeOnce     sync.Once
}

// NewNotificationBuffer constructs a buffer for async notification delivery.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		notifications: make([]notify.Notification, 0),
		signal:        make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// Push appends a notification and emits a non-blocking drain signal.
func (b *NotificationBuffer) Push(n notify.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	b.mu.Lock()
	b.notifications = append(b.notifications, n)
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Warnf pushes a warning-level notification, e.g. for input the producer had
// to skip.
func (b *NotificationBuffer) Warnf(format string, args ...any) {
	b.Push(notify.Notification{
		Level:   notify.LevelWarning,
		Message: fmt.Sprintf(format, args...),
	})
}

// Close marks the producer side as finished. Pending notifications can still
// be drained.
func (b *NotificationBuffer) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Drain returns all buffered notifications and clears the buffer.
func (b *NotificationBuffer) Drain() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.notifications) == 0 {
		return nil
	}

	out := make([]notify.Notification, len(b.notifications))
	copy(out, b.notifications)
	b.notifications = b.notifications[:0]
	return out
}

// WaitForSignal blocks until there are notifications ready to drain. Once
// the buffer is closed and empty, the command yields bufferClosedMsg.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return drainNotificationsMsg{}
		case <-b.done:
			select {
			case <-b.signal:
				return drainNotificationsMsg{}
			default:
				return bufferClosedMsg{}
			}
		}
	}
}
