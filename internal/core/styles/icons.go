package styles

import "github.com/colonyops/dismiss/internal/core/notify"

// Notification level icons.
const (
	IconNotifyInfo    = "ℹ"
	IconNotifySuccess = "✓"
	IconNotifyWarning = "!"
	IconNotifyError   = "×"
	IconPin           = "⚲"
)

// LevelIcon returns the icon for a notification level.
func LevelIcon(level notify.Level) string {
	switch level {
	case notify.LevelError:
		return IconNotifyError
	case notify.LevelWarning:
		return IconNotifyWarning
	case notify.LevelSuccess:
		return IconNotifySuccess
	default:
		return IconNotifyInfo
	}
}
