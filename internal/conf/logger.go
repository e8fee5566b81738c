// Package conf provides configuration management for the recorder.
package conf

import "github.com/vk2gpu/music-app/internal/logger"

// GetLogger returns the config package logger scoped to the config module.
func GetLogger() logger.Logger {
	return logger.Global().Module("config")
}
