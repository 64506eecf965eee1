package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ContextHook stamps notice events with what their context knows: the
// notice ID, the host surface, and how far into its countdown the notice
// was when the event was written.
type ContextHook struct {
	// Now overrides the clock used for the elapsed field.
	Now func() time.Time
}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == nil || ctx == context.Background() {
		return
	}

	if id := GetNoticeID(ctx); id != 0 {
		e.Int64("notice_id", id)
	}

	if host := GetHost(ctx); host != "" {
		e.Str("host", host)
	}

	if start, ok := GetNoticeStart(ctx); ok {
		now := time.Now
		if h.Now != nil {
			now = h.Now
		}
		e.Dur("elapsed", max(now().Sub(start), 0))
	}
}
