package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/dismiss/internal/core/config"
	"github.com/colonyops/dismiss/internal/core/logging"
	"github.com/colonyops/dismiss/internal/core/notice"
	"github.com/colonyops/dismiss/internal/core/notify"
)

// Settings controls countdown timing for every notice the controller starts.
type Settings struct {
	Duration      time.Duration
	TickInterval  time.Duration
	LabelInterval time.Duration
	MaxVisible    int
}

// SettingsFromConfig extracts controller settings from the notice config.
func SettingsFromConfig(c config.NoticeConfig) Settings {
	return Settings{
		Duration:      c.Duration,
		TickInterval:  c.TickInterval,
		LabelInterval: c.LabelInterval,
		MaxVisible:    c.MaxVisible,
	}
}

// activeNotice is a displayed notification. Countdown notices own a handle
// and receive progress updates through the notice.Sink methods.
type activeNotice struct {
	notification notify.Notification
	handle       *notice.Handle
	progress     float64
	seconds      int
}

func (n *activeNotice) SetProgressPercent(pct float64) { n.progress = pct }
func (n *activeNotice) SetSecondsLabel(secs int)       { n.seconds = secs }

// Counting reports whether the notice auto-dismisses.
func (n *activeNotice) Counting() bool {
	return n.handle != nil
}

// NoticeController manages the lifecycle of displayed notices. Every
// countdown notice owns a notice.Handle; every way a notice leaves the screen
// goes through that handle so its timers are released.
type NoticeController struct {
	notices  []*activeNotice
	sched    notice.Scheduler
	settings Settings
	log      zerolog.Logger
	logCtx   context.Context
}

func NewNoticeController(sched notice.Scheduler, settings Settings) *NoticeController {
	if settings.MaxVisible < 1 {
		settings.MaxVisible = config.DefaultMaxVisible
	}
	return &NoticeController{
		sched:    sched,
		settings: settings,
		log:      logging.Component("notices"),
		logCtx:   logging.WithHost(context.Background(), "tui"),
	}
}

// Push displays a notification. Non-permanent notices start counting down
// immediately. If the stack exceeds MaxVisible, the oldest notices are
// closed.
func (c *NoticeController) Push(n notify.Notification) error {
	an := &activeNotice{notification: n}

	if !n.Permanent {
		lg := logging.Notice(c.logCtx, n.ID)
		h, err := notice.Start(c.settings.Duration, c.settings.TickInterval, notice.Options{
			Scheduler:     c.sched,
			Sink:          an,
			Remover:       notice.RemoverFunc(func() { c.remove(an) }),
			LabelInterval: c.settings.LabelInterval,
			Logger:        &lg,
		})
		if err != nil {
			return fmt.Errorf("start notice %d: %w", n.ID, err)
		}
		an.handle = h
	}

	c.notices = append(c.notices, an)

	for len(c.notices) > c.settings.MaxVisible {
		c.log.Debug().Int64("notice_id", c.notices[0].notification.ID).Msg("evicting oldest notice")
		c.close(c.notices[0])
	}
	return nil
}

// Dismiss closes the newest (bottom-most) notice.
func (c *NoticeController) Dismiss() {
	if len(c.notices) > 0 {
		c.close(c.notices[len(c.notices)-1])
	}
}

// DismissAll closes every notice as if the user closed each one.
func (c *NoticeController) DismissAll() {
	for _, n := range c.snapshot() {
		c.close(n)
	}
}

// CloseAll is the host teardown: the screen is going away, so countdowns are
// released without going through their removal callbacks.
func (c *NoticeController) CloseAll() {
	for _, n := range c.snapshot() {
		if n.handle != nil {
			n.handle.Closed()
		}
	}
	c.notices = c.notices[:0]
}

// HasNotices returns true if any notice is displayed.
func (c *NoticeController) HasNotices() bool {
	return len(c.notices) > 0
}

// Notices returns the displayed notices, oldest first.
func (c *NoticeController) Notices() []*activeNotice {
	return c.notices
}

// close is the user-initiated close. Countdown notices are removed by their
// handle's removal callback; permanent notices are removed directly.
func (c *NoticeController) close(n *activeNotice) {
	if n.handle != nil {
		n.handle.Cancel()
		return
	}
	c.remove(n)
}

func (c *NoticeController) remove(target *activeNotice) {
	alive := c.notices[:0]
	for _, n := range c.notices {
		if n != target {
			alive = append(alive, n)
		}
	}
	c.notices = alive
}

func (c *NoticeController) snapshot() []*activeNotice {
	out := make([]*activeNotice, len(c.notices))
	copy(out, c.notices)
	return out
}
