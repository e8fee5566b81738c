package observability

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the observability package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
