package logger_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk2gpu/music-app/internal/logger"
)

func TestSlogLoggerLevels(t *testing.T) {
	testCases := []struct {
		name      string
		level     logger.LogLevel
		logFunc   func(l logger.Logger)
		shouldLog bool
	}{
		{"debug at info level", logger.LogLevelInfo, func(l logger.Logger) { l.Debug("msg") }, false},
		{"info at info level", logger.LogLevelInfo, func(l logger.Logger) { l.Info("msg") }, true},
		{"warn at error level", logger.LogLevelError, func(l logger.Logger) { l.Warn("msg") }, false},
		{"error at error level", logger.LogLevelError, func(l logger.Logger) { l.Error("msg") }, true},
		{"trace at trace level", logger.LogLevelTrace, func(l logger.Logger) { l.Trace("msg") }, true},
		{"trace at debug level", logger.LogLevelDebug, func(l logger.Logger) { l.Trace("msg") }, false},
		{"explicit log below level", logger.LogLevelWarn, func(l logger.Logger) { l.Log(logger.LogLevelInfo, "msg") }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tc.logFunc(logger.NewSlogLogger(buf, tc.level))
			assert.Equal(t, tc.shouldLog, buf.Len() > 0, "output: %q", buf.String())
		})
	}
}

func TestModuleAndFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelDebug).
		Module("audio").
		Module("recorder").
		With(logger.Uint64("session_id", 7))

	log.Info("session started",
		logger.Float32("loudness", 0.51234),
		logger.Duration("timeout", 2*time.Second),
		logger.Bool("auto_stop", true))

	out := buf.String()
	assert.Contains(t, out, "module=audio.recorder")
	assert.Contains(t, out, "session_id=7")
	assert.Contains(t, out, "loudness=0.512")
	assert.Contains(t, out, "timeout=2s")
	assert.Contains(t, out, "auto_stop=true")
	assert.NotContains(t, out, "time=", "console output carries no timestamp")
}

func TestTraceLevelName(t *testing.T) {
	buf := &bytes.Buffer{}
	logger.NewSlogLogger(buf, logger.LogLevelTrace).Trace("period")
	assert.Contains(t, buf.String(), "level=TRACE")
}

func TestErrorField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo)

	log.Error("flush failed", logger.Error(os.ErrPermission))
	assert.Contains(t, buf.String(), "permission denied")

	f := logger.Error(nil)
	assert.Equal(t, "error", f.Key)
	assert.Nil(t, f.Value)
}

func TestWithContextTraceID(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.NewSlogLogger(buf, logger.LogLevelInfo)

	ctx := logger.WithTraceID(t.Context(), "abc-123")
	log.WithContext(ctx).Info("hello")
	assert.Contains(t, buf.String(), "trace_id=abc-123")
}

func TestCentralLoggerFileOutput(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "app.log")

	cl, err := logger.NewCentralLogger(&logger.LoggingConfig{
		DefaultLevel: "debug",
		Timezone:     "UTC",
		Console:      &logger.ConsoleOutput{Enabled: false},
		FileOutput: &logger.FileOutput{
			Enabled: true,
			Path:    logPath,
			Level:   "debug",
		},
		ModuleLevels: map[string]string{"jobs": "error"},
	})
	require.NoError(t, err)

	cl.Module("audio").Info("stream opened", logger.Int("sample_rate", 48000))
	cl.Module("jobs").Info("suppressed by module level")
	require.NoError(t, cl.Close())

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	var records []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, records, 1)
	assert.Equal(t, "stream opened", records[0]["msg"])
	assert.Equal(t, "audio", records[0]["module"])
	assert.InDelta(t, 48000, records[0]["sample_rate"], 0)
}

func TestCentralLoggerInvalidTimezone(t *testing.T) {
	_, err := logger.NewCentralLogger(&logger.LoggingConfig{Timezone: "Not/AZone"})
	require.Error(t, err)
}

func TestNewCentralLoggerNilConfig(t *testing.T) {
	_, err := logger.NewCentralLogger(nil)
	require.Error(t, err)
}

func TestGlobalFallback(t *testing.T) {
	require.NotNil(t, logger.Global())
	require.NotNil(t, logger.Global().Module("test"))
}
