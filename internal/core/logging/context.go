package logging

import (
	"context"
	"time"
)

type contextKey string

const (
	noticeIDKey    contextKey = "notice_id"
	noticeStartKey contextKey = "notice_start"
	hostKey        contextKey = "host"
)

// WithNoticeID adds a notice ID to the context.
func WithNoticeID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, noticeIDKey, id)
}

// WithNoticeStart records when the notice's countdown began.
func WithNoticeStart(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, noticeStartKey, t)
}

// WithHost adds the name of the host surface (tui, loop) to the context.
func WithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, hostKey, host)
}

// GetNoticeID retrieves the notice ID from the context.
// Returns 0 if not present.
func GetNoticeID(ctx context.Context) int64 {
	if id, ok := ctx.Value(noticeIDKey).(int64); ok {
		return id
	}
	return 0
}

// GetNoticeStart retrieves the countdown start time from the context.
func GetNoticeStart(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(noticeStartKey).(time.Time)
	return t, ok
}

// GetHost retrieves the host name from the context.
// Returns empty string if not present.
func GetHost(ctx context.Context) string {
	if h, ok := ctx.Value(hostKey).(string); ok {
		return h
	}
	return ""
}
