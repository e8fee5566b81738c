package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// CentralLogger owns the output handlers and per-module levels. Packages
// get loggers from it through Module.
type CentralLogger struct {
	mu       sync.RWMutex
	handler  slog.Handler
	file     io.WriteCloser
	fallback slog.Level
	modules  map[string]slog.Level
}

var (
	globalMu sync.Mutex
	global   *CentralLogger
)

// SetGlobal installs cl as the process-wide logger.
func SetGlobal(cl *CentralLogger) {
	globalMu.Lock()
	global = cl
	globalMu.Unlock()
}

// Global returns the installed logger, or an info-level console logger when
// SetGlobal has not run yet.
func Global() *CentralLogger {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = &CentralLogger{
			handler:  consoleHandler(os.Stdout, slog.LevelInfo),
			fallback: slog.LevelInfo,
		}
	}
	return global
}

// NewCentralLogger builds the console and file handlers described by cfg.
func NewCentralLogger(cfg *LoggingConfig) (*CentralLogger, error) {
	if cfg == nil {
		return nil, fmt.Errorf("logging config cannot be nil")
	}
	c := withDefaults(*cfg)

	tz, err := loadTimezone(c.Timezone)
	if err != nil {
		return nil, err
	}

	cl := &CentralLogger{
		fallback: levelOf(c.DefaultLevel),
		modules:  make(map[string]slog.Level, len(c.ModuleLevels)),
	}
	for name, lvl := range c.ModuleLevels {
		cl.modules[name] = levelOf(lvl)
	}

	var outputs tee
	if c.Console.Enabled {
		outputs = append(outputs, consoleHandler(os.Stdout, levelOf(c.Console.Level)))
	}
	if c.FileOutput != nil && c.FileOutput.Enabled {
		w, err := openLogFile(c.FileOutput)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cl.file = w
		outputs = append(outputs, fileHandler(w, levelOf(c.FileOutput.Level), tz))
	}

	switch len(outputs) {
	case 0:
		cl.handler = consoleHandler(os.Stdout, cl.fallback)
	case 1:
		cl.handler = outputs[0]
	default:
		cl.handler = outputs
	}
	return cl, nil
}

func loadTimezone(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", name, err)
	}
	return tz, nil
}

// Module returns a logger for name, filtered at the module's configured level.
func (cl *CentralLogger) Module(name string) Logger {
	if cl == nil {
		return nil
	}
	cl.mu.RLock()
	defer cl.mu.RUnlock()

	level, ok := cl.modules[name]
	if !ok {
		level = cl.fallback
	}
	return &moduleLogger{
		name:  name,
		out:   slog.New(cl.handler),
		level: level,
	}
}

// Close closes the log file, if one is open.
func (cl *CentralLogger) Close() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.file == nil {
		return nil
	}
	err := cl.file.Close()
	cl.file = nil
	return err
}

// NewSlogLogger returns a console-format logger writing to w. Tests use it
// to capture output.
func NewSlogLogger(w io.Writer, level LogLevel) Logger {
	lvl := level.slogLevel()
	return &moduleLogger{
		out:   slog.New(consoleHandler(w, lvl)),
		level: lvl,
	}
}
