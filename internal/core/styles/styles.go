// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/dismiss/internal/core/notify"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style
	TextMutedStyle     lipgloss.Style
	TextErrorStyle     lipgloss.Style
	TextSuccessStyle   lipgloss.Style

	// Notice styles.
	NoticeInfoStyle     lipgloss.Style
	NoticeSuccessStyle  lipgloss.Style
	NoticeWarningStyle  lipgloss.Style
	NoticeErrorStyle    lipgloss.Style
	NoticeCountdownText lipgloss.Style
	NoticeSecondsStyle  lipgloss.Style
	HelpStyle           lipgloss.Style

	// Modal styles.
	ModalStyle      lipgloss.Style
	ModalTitleStyle lipgloss.Style
	ModalHelpStyle  lipgloss.Style
)

func noticeStyle(accent color.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Foreground(CurrentPalette.Foreground).
		Padding(0, 1)
}

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	TextMutedStyle = lipgloss.NewStyle().Foreground(p.Muted)
	TextErrorStyle = lipgloss.NewStyle().Foreground(p.Error)
	TextSuccessStyle = lipgloss.NewStyle().Foreground(p.Success)

	NoticeInfoStyle = noticeStyle(p.Info)
	NoticeSuccessStyle = noticeStyle(p.Success)
	NoticeWarningStyle = noticeStyle(p.Warning)
	NoticeErrorStyle = noticeStyle(p.Error)
	NoticeCountdownText = lipgloss.NewStyle().Foreground(p.Muted)
	NoticeSecondsStyle = lipgloss.NewStyle().Foreground(p.Foreground).Bold(true)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted).MarginTop(1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)
}

// NoticeStyle returns the container style for a notification level.
func NoticeStyle(level notify.Level) lipgloss.Style {
	switch level {
	case notify.LevelError:
		return NoticeErrorStyle
	case notify.LevelWarning:
		return NoticeWarningStyle
	case notify.LevelSuccess:
		return NoticeSuccessStyle
	default:
		return NoticeInfoStyle
	}
}

// LevelColor returns the accent color for a notification level.
func LevelColor(level notify.Level) color.Color {
	switch level {
	case notify.LevelError:
		return CurrentPalette.Error
	case notify.LevelWarning:
		return CurrentPalette.Warning
	case notify.LevelSuccess:
		return CurrentPalette.Success
	default:
		return CurrentPalette.Info
	}
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
