package logger

import (
	"context"
	"log/slog"
	"slices"
)

// moduleLogger tags every record with its module name and any fields added
// through With.
type moduleLogger struct {
	name   string
	out    *slog.Logger
	level  slog.Level
	fields []Field
}

func (m *moduleLogger) derive(name string, fields []Field) *moduleLogger {
	return &moduleLogger{name: name, out: m.out, level: m.level, fields: fields}
}

func (m *moduleLogger) Module(name string) Logger {
	if m == nil {
		return nil
	}
	if m.name != "" {
		name = m.name + "." + name
	}
	return m.derive(name, slices.Clone(m.fields))
}

func (m *moduleLogger) With(fields ...Field) Logger {
	if m == nil {
		return nil
	}
	return m.derive(m.name, slices.Concat(m.fields, fields))
}

func (m *moduleLogger) WithContext(ctx context.Context) Logger {
	if m == nil {
		return nil
	}
	if id := traceIDFrom(ctx); id != "" {
		return m.With(Field{traceIDKey, id})
	}
	return m
}

func (m *moduleLogger) Trace(msg string, fields ...Field) { m.emit(levelTrace, msg, fields) }
func (m *moduleLogger) Debug(msg string, fields ...Field) { m.emit(slog.LevelDebug, msg, fields) }
func (m *moduleLogger) Info(msg string, fields ...Field)  { m.emit(slog.LevelInfo, msg, fields) }
func (m *moduleLogger) Warn(msg string, fields ...Field)  { m.emit(slog.LevelWarn, msg, fields) }
func (m *moduleLogger) Error(msg string, fields ...Field) { m.emit(slog.LevelError, msg, fields) }

func (m *moduleLogger) Log(level LogLevel, msg string, fields ...Field) {
	m.emit(level.slogLevel(), msg, fields)
}

func (m *moduleLogger) Flush() error { return nil }

func (m *moduleLogger) emit(level slog.Level, msg string, fields []Field) {
	if m == nil || level < m.level {
		return
	}
	attrs := make([]slog.Attr, 0, 1+len(m.fields)+len(fields))
	if m.name != "" {
		attrs = append(attrs, slog.String(moduleKey, m.name))
	}
	for _, f := range m.fields {
		attrs = append(attrs, f.attr())
	}
	for _, f := range fields {
		attrs = append(attrs, f.attr())
	}
	m.out.LogAttrs(context.Background(), level, msg, attrs...)
}
