package notice

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDuration is returned by Start when the total duration or tick
// interval cannot drive a countdown.
var ErrInvalidDuration = errors.New("invalid notice duration")

// DurationError describes the rejected configuration. It matches
// ErrInvalidDuration with errors.Is.
type DurationError struct {
	Total  time.Duration
	Tick   time.Duration
	Reason string
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("%s: total=%s tick=%s: %s", ErrInvalidDuration, e.Total, e.Tick, e.Reason)
}

func (e *DurationError) Is(target error) bool {
	return target == ErrInvalidDuration
}

// ValidateDurations reports whether total and tick can drive a countdown.
func ValidateDurations(total, tick time.Duration) error {
	switch {
	case total < 0 || tick < 0:
		return &DurationError{Total: total, Tick: tick, Reason: "durations must not be negative"}
	case tick == 0:
		return &DurationError{Total: total, Tick: tick, Reason: "tick interval must be positive"}
	case tick > total:
		return &DurationError{Total: total, Tick: tick, Reason: "tick interval exceeds total duration"}
	}
	return nil
}
