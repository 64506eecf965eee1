// Package tui hosts notice countdowns inside a Bubble Tea program.
package tui

import (
	"fmt"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/dismiss/internal/core/config"
	"github.com/colonyops/dismiss/internal/core/logging"
	"github.com/colonyops/dismiss/internal/core/notify"
	"github.com/colonyops/dismiss/internal/core/styles"
	tuinotify "github.com/colonyops/dismiss/internal/tui/notify"
)

// notificationMsg asks the model to publish a notification on the bus.
type notificationMsg struct {
	notification notify.Notification
}

// Deps holds the collaborators of the TUI.
type Deps struct {
	Config *config.Config
	Bus    *tuinotify.Bus
}

// Opts configures a single TUI run.
type Opts struct {
	// Initial notifications are published when the program starts.
	Initial []notify.Notification
	// Buffer delivers notifications produced outside the update loop.
	Buffer *NotificationBuffer
	// ExitWhenEmpty quits once the last notice leaves the screen.
	ExitWhenEmpty bool
}

// Model is the Bubble Tea model for the notice screen.
type Model struct {
	bus        *tuinotify.Bus
	sched      *teaScheduler
	controller *NoticeController
	view       *NoticeView
	history    *NotificationModal
	keys       keyMap
	help       help.Model
	log        zerolog.Logger

	initial       []notify.Notification
	buffer        *NotificationBuffer
	exitWhenEmpty bool
	created       int
	width         int
	height        int
}

// New wires the scheduler, controller and view and subscribes the controller
// to the bus.
func New(deps Deps, opts Opts) Model {
	cfg := deps.Config
	if cfg == nil {
		d := config.DefaultConfig()
		cfg = &d
	}

	bus := deps.Bus
	if bus == nil {
		bus = tuinotify.NewBus(cfg.Notice.HistoryLimit)
	}

	sched := newTeaScheduler()
	controller := NewNoticeController(sched, SettingsFromConfig(cfg.Notice))

	m := Model{
		bus:           bus,
		sched:         sched,
		controller:    controller,
		view:          NewNoticeView(controller, cfg.TUI.Width, cfg.Notice.Markdown),
		keys:          defaultKeyMap(),
		help:          help.New(),
		log:           logging.Component("tui"),
		initial:       opts.Initial,
		buffer:        opts.Buffer,
		exitWhenEmpty: opts.ExitWhenEmpty,
	}

	log := m.log
	bus.Subscribe(func(n notify.Notification) {
		if err := controller.Push(n); err != nil {
			log.Error().Err(err).Int64("notice_id", n.ID).Msg("failed to show notice")
		}
	})

	return m
}

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if len(m.initial) > 0 {
		publish := make([]tea.Cmd, 0, len(m.initial))
		for _, n := range m.initial {
			publish = append(publish, func() tea.Msg { return notificationMsg{notification: n} })
		}
		cmds = append(cmds, tea.Sequence(publish...))
	}
	if m.buffer != nil {
		cmds = append(cmds, m.buffer.WaitForSignal())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.SetWidth(msg.Width)
		return m, nil

	case notificationMsg:
		m.bus.Publish(msg.notification)
		m.refreshHistory()
		return m, m.sched.Flush()

	case drainNotificationsMsg:
		for _, n := range m.buffer.Drain() {
			m.bus.Publish(n)
		}
		m.refreshHistory()
		return m, tea.Batch(m.sched.Flush(), m.buffer.WaitForSignal())

	case bufferClosedMsg:
		m.bus.Publishf(notify.LevelInfo, "notice stream closed")
		m.refreshHistory()
		return m, m.sched.Flush()

	case timerFiredMsg:
		m.sched.Fire(msg.token)
		return m, m.afterChange(m.sched.Flush())

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.history != nil {
		return m.handleHistoryKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.History):
		w, h := m.size()
		m.history = NewNotificationModal(m.bus, w, h)
		return m, nil
	case key.Matches(msg, m.keys.Quit):
		m.controller.CloseAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.controller.Dismiss()
		return m, m.afterChange(nil)
	case key.Matches(msg, m.keys.DismissAll):
		m.controller.DismissAll()
		return m, m.afterChange(nil)
	case key.Matches(msg, m.keys.New):
		m.created++
		m.bus.Publishf(m.nextLevel(), "Notice #%d", m.created)
		return m, m.sched.Flush()
	case key.Matches(msg, m.keys.Pin):
		m.created++
		n := notify.Notification{
			Level:     m.nextLevel(),
			Message:   fmt.Sprintf("Notice #%d", m.created),
			Permanent: true,
		}
		return m, func() tea.Msg { return notificationMsg{notification: n} }
	}
	return m, nil
}

// nextLevel cycles through the levels for notices created from the keyboard.
func (m Model) nextLevel() notify.Level {
	return notify.Levels[(m.created-1)%len(notify.Levels)]
}

func (m Model) handleHistoryKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.history = nil
		m.controller.CloseAll()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Close):
		m.history = nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.history.ScrollUp()
	case key.Matches(msg, m.keys.ScrollDown):
		m.history.ScrollDown()
	case key.Matches(msg, m.keys.ClearHistory):
		m.history.Clear()
	}
	return m, nil
}

func (m Model) refreshHistory() {
	if m.history != nil {
		m.history.Refresh()
	}
}

// size returns the terminal size, with a fallback before the first
// WindowSizeMsg arrives.
func (m Model) size() (int, int) {
	w, h := m.width, m.height
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	return w, h
}

// afterChange quits when configured to exit once the stack is empty.
func (m Model) afterChange(cmd tea.Cmd) tea.Cmd {
	if m.exitWhenEmpty && !m.controller.HasNotices() {
		return tea.Batch(cmd, tea.Quit)
	}
	return cmd
}

func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

// render draws the notice stack with the help line, and the history modal
// on top when it is open.
func (m Model) render() string {
	body := m.view.View()
	if body == "" {
		body = styles.TextMutedStyle.Render("no notices")
	}
	screen := lipgloss.JoinVertical(lipgloss.Left,
		body,
		styles.HelpStyle.Render(m.help.View(m.keys)),
	)

	if m.history != nil {
		w, h := m.size()
		return m.history.Overlay(lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, screen), w, h)
	}
	return screen
}

// Controller exposes the notice controller, mainly for the caller to inspect
// the final state after the program exits.
func (m Model) Controller() *NoticeController {
	return m.controller
}
