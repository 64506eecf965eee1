package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Notice returns the logger for one countdown. The logger carries ctx, tagged
// with the notice ID and the current time as the countdown start, so a logger
// hooked with ContextHook writes notice_id, host and elapsed on every event.
func Notice(ctx context.Context, id int64) zerolog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = WithNoticeStart(WithNoticeID(ctx, id), time.Now())
	return log.With().Str("cmp", "notice").Ctx(ctx).Logger()
}
