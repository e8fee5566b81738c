package errors

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/getsentry/sentry-go"
)

// TelemetryReporter receives every error passed through Build while it is
// installed and enabled.
type TelemetryReporter interface {
	ReportError(err *EnhancedError)
	IsEnabled() bool
}

var (
	reporterMu sync.RWMutex
	reporter   TelemetryReporter
	reporting  atomic.Bool
)

// SetTelemetryReporter installs r. nil turns reporting off.
func SetTelemetryReporter(r TelemetryReporter) {
	reporterMu.Lock()
	defer reporterMu.Unlock()
	reporter = r
	reporting.Store(r != nil && r.IsEnabled())
}

// GetTelemetryReporter returns the installed reporter, if any.
func GetTelemetryReporter() TelemetryReporter {
	reporterMu.RLock()
	defer reporterMu.RUnlock()
	return reporter
}

func report(ee *EnhancedError) {
	if !reporting.Load() {
		return
	}
	if r := GetTelemetryReporter(); r != nil && r.IsEnabled() {
		r.ReportError(ee)
	}
}

// InitSentry starts the Sentry client and installs a SentryReporter. With an
// empty dsn nothing is reported.
func InitSentry(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	SetTelemetryReporter(NewSentryReporter(true))
	return nil
}

// SentryReporter sends scrubbed errors to Sentry, once per error.
type SentryReporter struct {
	enabled bool
}

func NewSentryReporter(enabled bool) *SentryReporter {
	return &SentryReporter{enabled: enabled}
}

func (sr *SentryReporter) IsEnabled() bool { return sr.enabled }

func (sr *SentryReporter) ReportError(ee *EnhancedError) {
	if !sr.enabled || ee.IsReported() {
		return
	}
	title := reportTitle(ee)
	message := scrubMessage(fmt.Sprintf("[%s] %s", ee.Category, ee.Error()))
	level := sentryLevel(ee.Category)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(map[string]string{
			"error_title": title,
			"component":   ee.Component,
			"category":    string(ee.Category),
			"error_type":  fmt.Sprintf("%T", ee.Err),
		})
		for k, v := range ee.context {
			if s, ok := v.(string); ok {
				v = scrubMessage(s)
			}
			scope.SetContext(k, map[string]any{"value": v})
		}
		scope.SetLevel(level)
		scope.SetFingerprint([]string{title, ee.Component, string(ee.Category)})

		event := sentry.NewEvent()
		event.Level = level
		event.Message = message
		event.Exception = []sentry.Exception{{Type: title, Value: message}}
		sentry.CaptureEvent(event)
	})
	ee.MarkReported()
}

// sentryLevel ranks device and stream failures above file and disk trouble.
func sentryLevel(c ErrorCategory) sentry.Level {
	switch c {
	case CategoryFileIO, CategoryDiskUsage, CategoryAudio:
		return sentry.LevelWarning
	case CategoryNotFound, CategoryValidation:
		return sentry.LevelInfo
	}
	return sentry.LevelError
}

// reportTitle builds a grouping title such as "Audio Audio Stream Error Open Stream".
func reportTitle(ee *EnhancedError) string {
	var parts []string
	if ee.Component != "" && ee.Component != ComponentUnknown {
		parts = append(parts, titleWords(ee.Component))
	}
	if ee.Category != "" {
		parts = append(parts, titleWords(string(ee.Category))+" Error")
	}
	if op := ee.operation(); op != "" {
		parts = append(parts, titleWords(op))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%T", ee.Err)
	}
	return strings.Join(parts, " ")
}

// titleWords turns "file-io" or "open_stream" into "File Io" or "Open Stream".
func titleWords(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(https?://[^?\s]+)\?\S*`), "$1?[REDACTED]"},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|auth|dsn)[=:]\S+`), "$1=[REDACTED]"},
	{regexp.MustCompile(`(/home/|/Users/|C:\\Users\\)[^/\\\s]+`), "$1[USER]"},
}

// scrubMessage strips query strings, credentials and user names.
func scrubMessage(msg string) string {
	for _, s := range scrubbers {
		msg = s.re.ReplaceAllString(msg, s.repl)
	}
	return msg
}
