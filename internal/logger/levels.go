package logger

import (
	"log/slog"
	"strings"
)

// LogLevel is a severity name as written in the config file.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// levelTrace sits below slog's Debug (-4). The recorder logs per-period
// detail at this level.
const levelTrace = slog.Level(-8)

// slogLevel maps a level name to slog. Unknown names mean info.
func (l LogLevel) slogLevel() slog.Level {
	switch LogLevel(strings.ToLower(string(l))) {
	case LogLevelTrace:
		return levelTrace
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	}
	return slog.LevelInfo
}

func levelOf(name string) slog.Level {
	return LogLevel(name).slogLevel()
}
