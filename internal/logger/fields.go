package logger

import (
	"log/slog"
	"math"
	"time"
	"unique"
)

// Field is one key/value pair attached to a record.
type Field struct {
	Key   string
	Value any
}

// key interns field names; the same few keys are logged on every session.
func key(k string) string {
	return unique.Make(k).Value()
}

var (
	errorKey   = key("error")
	moduleKey  = key("module")
	traceIDKey = key("trace_id")
)

// Typed constructors. Keys are interned.
func String(k, v string) Field { return Field{key(k), v} }
func Int(k string, v int) Field { return Field{key(k), v} }
func Int64(k string, v int64) Field { return Field{key(k), v} }
func Uint64(k string, v uint64) Field { return Field{key(k), v} }
func Float32(k string, v float32) Field { return Field{key(k), v} }
func Float64(k string, v float64) Field { return Field{key(k), v} }
func Bool(k string, v bool) Field { return Field{key(k), v} }
func Duration(k string, v time.Duration) Field { return Field{key(k), v} }
func Time(k string, v time.Time) Field { return Field{key(k), v} }

// Any wraps an arbitrary value. Prefer a typed constructor.
func Any(k string, v any) Field { return Field{key(k), v} }

// Error stores err's message under "error". A nil error logs as null.
func Error(err error) Field {
	if err == nil {
		return Field{errorKey, nil}
	}
	return Field{errorKey, err.Error()}
}

// attr renders a field for slog. Floats keep three decimals so loudness
// values stay readable; durations are rounded to the millisecond.
func (f Field) attr() slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case uint64:
		return slog.Uint64(f.Key, v)
	case float32:
		return slog.Float64(f.Key, round3(float64(v)))
	case float64:
		return slog.Float64(f.Key, round3(v))
	case bool:
		return slog.Bool(f.Key, v)
	case time.Time:
		return slog.Time(f.Key, v)
	case time.Duration:
		return slog.String(f.Key, v.Round(time.Millisecond).String())
	}
	return slog.Any(f.Key, f.Value)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
