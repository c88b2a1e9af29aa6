// Package ctxlog carries a zap Logger and a request ID in a Context.
package ctxlog

import (
	"context"

	"go.uber.org/zap" // Logging.
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	sugaredLoggerKey
	requestIDKey
)

// RequestIDField is the name of the log field holding the request ID.
const RequestIDField = "request_id"

var (
	// Returned when nothing is embedded.
	nop = zap.NewNop()

	// L is an alias for GetLogger.
	L = GetLogger

	// S is an alias for GetSugaredLogger.
	S = GetSugaredLogger
)

// WithLogger embeds logger in ctx. Later it can be
// obtained by GetLogger or GetSugaredLogger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	// Attach the SugaredLogger first since it's used less often.
	ctx = context.WithValue(ctx, sugaredLoggerKey, logger.Sugar())
	return context.WithValue(ctx, loggerKey, logger)
}

// WithFields adds fields to the Logger embedded in ctx.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, GetLogger(ctx).With(fields...))
}

// WithName adds name to the Logger embedded in ctx.
func WithName(ctx context.Context, name string) context.Context {
	return WithLogger(ctx, GetLogger(ctx).Named(name))
}

// WithRequestID embeds a request ID in ctx, and adds it
// to the embedded Logger as the "request_id" field.
func WithRequestID(ctx context.Context, id string) context.Context {
	ctx = context.WithValue(ctx, requestIDKey, id)
	return WithFields(ctx, zap.String(RequestIDField, id))
}

// RequestID returns the request ID embedded in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// GetLogger returns the Logger embedded in ctx,
// or a nop Logger if there isn't one.
func GetLogger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return nop
}

// GetSugaredLogger returns the SugaredLogger embedded in ctx,
// or a nop SugaredLogger if there isn't one.
func GetSugaredLogger(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(sugaredLoggerKey).(*zap.SugaredLogger); ok {
		return l
	}
	return nop.Sugar()
}
