package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/colonyops/dismiss/internal/core/notify"
)

// DefaultHistoryLimit caps the in-memory history kept by a Bus.
const DefaultHistoryLimit = 50

// Subscriber is a callback invoked when a notification is published.
type Subscriber func(notify.Notification)

// Bus is a synchronous in-process notification bus. It assigns IDs, keeps a
// bounded in-memory history and dispatches notifications to subscribers
// inline. The Bus is safe for use from the Bubble Tea Update loop.
type Bus struct {
	mu          sync.Mutex
	subscribers []Subscriber
	history     []notify.Notification
	limit       int
	nextID      int64
	now         func() time.Time
}

// NewBus creates a bus that remembers at most limit notifications. A limit
// of zero or less uses DefaultHistoryLimit.
func NewBus(limit int) *Bus {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Bus{limit: limit, now: time.Now}
}

// Subscribe registers a callback that will be invoked on every Publish.
func (b *Bus) Subscribe(fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, fn)
}

// Publish assigns an ID, records the notification and dispatches it to all
// subscribers. It returns the notification as delivered.
func (b *Bus) Publish(n notify.Notification) notify.Notification {
	b.mu.Lock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = b.now()
	}
	if n.Level == "" {
		n.Level = notify.LevelInfo
	}
	b.nextID++
	n.ID = b.nextID

	b.history = append(b.history, n)
	if len(b.history) > b.limit {
		b.history = b.history[len(b.history)-b.limit:]
	}

	subs := make([]Subscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
	return n
}

// Publishf formats a message and publishes it at the given level.
func (b *Bus) Publishf(level notify.Level, format string, args ...any) notify.Notification {
	return b.Publish(notify.Notification{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}

// History returns the remembered notifications, newest first.
func (b *Bus) History() []notify.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]notify.Notification, len(b.history))
	for i, n := range b.history {
		out[len(b.history)-1-i] = n
	}
	return out
}

// Clear forgets all remembered notifications.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = nil
}
