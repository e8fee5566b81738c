package audio

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the audio package logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("audio")
}
