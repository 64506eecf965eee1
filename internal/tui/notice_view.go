package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/progress"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"

	"github.com/colonyops/dismiss/internal/core/styles"
)

// horizontal padding inside a notice box
const noticePadding = 2

// NoticeView renders the notice stack.
type NoticeView struct {
	controller *NoticeController
	width      int
	markdown   *glamour.TermRenderer
}

// NewNoticeView creates a view for the controller's notices. When markdown
// is true, messages are rendered with glamour; rendering failures fall back
// to the plain message.
func NewNoticeView(controller *NoticeController, width int, markdown bool) *NoticeView {
	v := &NoticeView{controller: controller, width: width}
	if markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithStyles(styles.GlamourStyle()),
			glamour.WithWordWrap(v.innerWidth()),
		)
		if err != nil {
			log.Warn().Err(err).Msg("markdown renderer unavailable, using plain text")
		} else {
			v.markdown = r
		}
	}
	return v
}

func (v *NoticeView) innerWidth() int {
	return max(v.width-noticePadding, 1)
}

// View renders the notice stack with notices stacked vertically (oldest at
// top, newest at bottom).
func (v *NoticeView) View() string {
	notices := v.controller.Notices()
	if len(notices) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(notices))
	for _, n := range notices {
		rendered = append(rendered, v.renderNotice(n))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

func (v *NoticeView) renderNotice(n *activeNotice) string {
	level := n.notification.Level
	icon := lipgloss.NewStyle().Foreground(styles.LevelColor(level)).Render(styles.LevelIcon(level))

	lines := []string{icon + " " + v.renderMessage(n.notification.Message)}

	if n.Counting() {
		label := styles.NoticeCountdownText.Render("closes in ") +
			styles.NoticeSecondsStyle.Render(fmt.Sprintf("%d", n.seconds)) +
			styles.NoticeCountdownText.Render("s")

		bar := progress.New(
			progress.WithColors(styles.LevelColor(level)),
			progress.WithoutPercentage(),
			progress.WithWidth(v.innerWidth()),
		)
		lines = append(lines, label, bar.ViewAs(n.progress/100))
	} else {
		lines = append(lines, styles.NoticeCountdownText.Render(styles.IconPin+" pinned"))
	}

	return styles.NoticeStyle(level).Width(v.width).Render(strings.Join(lines, "\n"))
}

func (v *NoticeView) renderMessage(msg string) string {
	if v.markdown == nil {
		return msg
	}
	out, err := v.markdown.Render(msg)
	if err != nil {
		log.Debug().Err(err).Msg("markdown render failed")
		return msg
	}
	return strings.TrimSpace(out)
}
