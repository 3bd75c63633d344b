package http

import (
	"context"

	"go.uber.org/zap"
)

// HeaderTraceID carries the per-request trace identifier on every response.
const HeaderTraceID = "X-Trace-ID"

type ctxKey int

const (
	traceIDKey ctxKey = iota
	loggerKey
)

// TraceIDFromContext returns the trace id set by TraceMiddleware, or "".
func TraceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}

// LoggerFromContext returns the request-scoped logger, falling back to fallback
// (or a no-op logger) outside TraceMiddleware.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

func withTrace(ctx context.Context, traceID string, logger *zap.Logger) context.Context {
	ctx = context.WithValue(ctx, traceIDKey, traceID)
	return context.WithValue(ctx, loggerKey, logger)
}
