// Package logger is the structured logging layer shared by every package.
//
// Each package asks the global CentralLogger for a logger named after itself
// and logs typed fields:
//
//	log := logger.Global().Module("audio")
//	log.Info("stream opened",
//	    logger.String("input", in.Name),
//	    logger.Int("sample_rate", 48000))
//
// The console gets plain text without timestamps. The optional log file gets
// JSON lines and is rotated by lumberjack.
//
// Tests capture output with NewSlogLogger:
//
//	buf := &bytes.Buffer{}
//	log := logger.NewSlogLogger(buf, logger.LogLevelDebug)
package logger

import (
	"context"
)

// Logger is the logging interface handed to packages.
type Logger interface {
	// Module returns a child logger named parent.name.
	Module(name string) Logger

	Trace(msg string, fields ...Field)
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Log writes at an explicit level.
	Log(level LogLevel, msg string, fields ...Field)

	// With returns a logger that adds fields to every record.
	With(fields ...Field) Logger
	// WithContext picks up the trace ID stored by WithTraceID.
	WithContext(ctx context.Context) Logger

	Flush() error
}

type traceIDContextKey struct{}

// WithTraceID stores id in ctx for WithContext to pick up.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, id)
}

func traceIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDContextKey{}).(string)
	return id
}
