package errors

import (
	"maps"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

// ComponentUnknown is the component of errors built without one.
const ComponentUnknown = "unknown"

// EnhancedError is an error annotated for reporting. Its context is fixed
// once Build returns.
type EnhancedError struct {
	Err       error
	Component string
	Category  ErrorCategory
	Timestamp time.Time

	context  map[string]any
	reported atomic.Bool
}

func (ee *EnhancedError) Error() string {
	if ee.Err == nil {
		return ""
	}
	return ee.Err.Error()
}

func (ee *EnhancedError) Unwrap() error { return ee.Err }

// Is matches target by identity when it is an EnhancedError, so two
// sentinels that share a category stay distinct. Other targets are looked up
// in the wrapped chain.
func (ee *EnhancedError) Is(target error) bool {
	if t, ok := target.(*EnhancedError); ok {
		return ee == t
	}
	return Is(ee.Err, target)
}

// GetContext returns a copy of the context values.
func (ee *EnhancedError) GetContext() map[string]any {
	if ee.context == nil {
		return nil
	}
	return maps.Clone(ee.context)
}

func (ee *EnhancedError) operation() string {
	op, _ := ee.context["operation"].(string)
	return op
}

// MarkReported records that a reporter has sent this error.
func (ee *EnhancedError) MarkReported() { ee.reported.Store(true) }

// IsReported reports whether MarkReported has been called.
func (ee *EnhancedError) IsReported() bool { return ee.reported.Load() }

// ErrorBuilder assembles an EnhancedError:
//
//	errors.New(err).Component("audio").Category(errors.CategoryFileIO).Build()
type ErrorBuilder struct {
	err       error
	component string
	category  ErrorCategory
	context   map[string]any
}

// New starts a builder around err.
func New(err error) *ErrorBuilder {
	return &ErrorBuilder{err: err}
}

func (eb *ErrorBuilder) Component(name string) *ErrorBuilder {
	eb.component = name
	return eb
}

func (eb *ErrorBuilder) Category(c ErrorCategory) *ErrorBuilder {
	eb.category = c
	return eb
}

// Context attaches a key/value pair. Later values replace earlier ones.
func (eb *ErrorBuilder) Context(key string, value any) *ErrorBuilder {
	if eb.context == nil {
		eb.context = make(map[string]any, 4)
	}
	eb.context[key] = value
	return eb
}

// Operation names the step that failed. It becomes part of the report title.
func (eb *ErrorBuilder) Operation(op string) *ErrorBuilder {
	return eb.Context("operation", op)
}

// FileContext records the extension and size of the file involved. The
// path itself is left out because it usually contains a user name.
func (eb *ErrorBuilder) FileContext(path string, size int64) *ErrorBuilder {
	if path != "" {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if ext == "" {
			ext = "none"
		}
		eb.Context("file_extension", ext)
	}
	if size > 0 {
		eb.Context("file_size", size)
	}
	return eb
}

// Build fills in defaults, hands the error to the active reporter and
// returns it.
func (eb *ErrorBuilder) Build() *EnhancedError {
	ee := &EnhancedError{
		Err:       eb.err,
		Component: eb.component,
		Category:  eb.category,
		Timestamp: time.Now(),
		context:   eb.context,
	}
	if ee.Err == nil {
		ee.Err = NewStd("unknown error")
	}
	if ee.Component == "" {
		ee.Component = ComponentUnknown
	}
	if ee.Category == "" {
		ee.Category = guessCategory(ee.Err)
	}
	report(ee)
	return ee
}

// FileError is shorthand for a CategoryFileIO error with FileContext.
func FileError(err error, path string, size int64) *EnhancedError {
	return New(err).Category(CategoryFileIO).FileContext(path, size).Build()
}
