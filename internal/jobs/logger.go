package jobs

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the jobs package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("jobs")
}
