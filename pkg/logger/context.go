package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var loggerKey ctxKey

// With attaches a child logger carrying the extra attributes to the
// context, so request-scoped fields like the trace id follow the
// request through every layer.
func With(ctx context.Context, attrs ...any) context.Context {
	l := From(ctx).With(attrs...)
	return context.WithValue(ctx, loggerKey, l)
}

// From returns the request-scoped logger, falling back to the process
// default when the context carries none.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return Default()
}
