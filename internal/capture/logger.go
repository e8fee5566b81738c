package capture

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the capture package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("capture")
}
