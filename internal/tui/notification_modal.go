package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/dismiss/internal/core/notify"
	"github.com/colonyops/dismiss/internal/core/styles"
)

const (
	notifyModalWidthPct  = 65
	notifyModalMinWidth  = 40
	notifyModalMaxHeight = 30
	notifyModalMargin    = 4
	notifyModalChrome    = 6 // title + divider + help + spacing
)

// historySource provides the notifications shown in the history modal,
// newest first.
type historySource interface {
	History() []notify.Notification
	Clear()
}

// NotificationModal displays a scrollable history of notifications.
type NotificationModal struct {
	source   historySource
	viewport viewport.Model
}

// NewNotificationModal creates a modal showing notification history.
func NewNotificationModal(source historySource, width, height int) *NotificationModal {
	modalWidth := calcNotificationModalWidth(width)
	modalHeight := calcNotificationModalHeight(height)

	m := &NotificationModal{
		source: source,
		viewport: viewport.New(
			viewport.WithWidth(modalWidth-4),
			viewport.WithHeight(max(modalHeight-notifyModalChrome, 1)),
		),
	}

	m.refreshContent()
	return m
}

func (m *NotificationModal) refreshContent() {
	var history []notify.Notification
	if m.source != nil {
		history = m.source.History()
	}

	if len(history) == 0 {
		m.viewport.SetContent(styles.TextMutedStyle.Render("No notifications"))
		return
	}

	var b strings.Builder
	for i, n := range history {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatNotification(n))
	}

	m.viewport.SetContent(b.String())
}

func formatNotification(n notify.Notification) string {
	ts := styles.TextMutedStyle.Render(n.CreatedAt.Format("15:04:05"))
	accent := lipgloss.NewStyle().Foreground(styles.LevelColor(n.Level))

	msg := n.Message
	if n.Permanent {
		msg += " " + styles.TextMutedStyle.Render(styles.IconPin)
	}

	return fmt.Sprintf("%s %s %s", ts, accent.Render(styles.LevelIcon(n.Level)), msg)
}

// ScrollUp scrolls the viewport up.
func (m *NotificationModal) ScrollUp() {
	m.viewport.ScrollUp(1)
}

// ScrollDown scrolls the viewport down.
func (m *NotificationModal) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// Clear forgets all notifications and refreshes the view. Notices still on
// screen are not affected.
func (m *NotificationModal) Clear() {
	if m.source != nil {
		m.source.Clear()
	}
	m.refreshContent()
}

// Refresh reloads the history, e.g. after a notification was published while
// the modal is open.
func (m *NotificationModal) Refresh() {
	m.refreshContent()
}

// Overlay composites the modal centered over background, which is expected
// to fill a width x height screen.
func (m *NotificationModal) Overlay(background string, width, height int) string {
	modalWidth := calcNotificationModalWidth(width)

	scrollInfo := ""
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		scrollInfo = styles.TextMutedStyle.Render(
			fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100),
		)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	modal := styles.ModalStyle.
		Width(modalWidth).
		Render(lipgloss.JoinVertical(
			lipgloss.Left,
			styles.ModalTitleStyle.Render("Notifications"+scrollInfo),
			divider,
			m.viewport.View(),
			styles.ModalHelpStyle.Render("[j/k] scroll  [D] clear all  [esc] close"),
		))

	x := max((width-lipgloss.Width(modal))/2, 0)
	y := max((height-lipgloss.Height(modal))/2, 0)

	return lipgloss.NewCompositor(
		lipgloss.NewLayer(background),
		lipgloss.NewLayer(modal).X(x).Y(y).Z(1),
	).Render()
}

func calcNotificationModalWidth(termWidth int) int {
	available := max(termWidth-notifyModalMargin, 1)
	target := termWidth * notifyModalWidthPct / 100
	return min(max(target, notifyModalMinWidth), available)
}

func calcNotificationModalHeight(termHeight int) int {
	return max(min(termHeight-notifyModalMargin, notifyModalMaxHeight), notifyModalChrome+1)
}
