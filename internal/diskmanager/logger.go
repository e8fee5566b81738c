package diskmanager

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the diskmanager package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("diskmanager")
}
