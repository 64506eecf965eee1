package notify

import (
	"fmt"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Levels lists every supported level in display order.
var Levels = []Level{LevelInfo, LevelSuccess, LevelWarning, LevelError}

// ParseLevel converts a user-supplied string into a Level.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return Level(s), nil
	case "warn":
		return LevelWarning, nil
	case "":
		return LevelInfo, nil
	}
	return "", fmt.Errorf("unknown notification level %q", s)
}

// Notification represents a single notification event.
type Notification struct {
	ID      int64  `json:"id,omitempty"`
	Level   Level  `json:"level,omitempty"`
	Message string `json:"message"`

	// Permanent notifications never count down; only the user can close them.
	Permanent bool `json:"permanent,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}
