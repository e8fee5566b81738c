// Package errors wraps errors with the component, category and context needed
// to group them in logs and error reports. It also re-exports the standard
// library helpers so callers import a single errors package.
package errors

import (
	stderrors "errors"
)

// NewStd returns a plain error, like the standard errors.New.
func NewStd(text string) error { return stderrors.New(text) }

// Standard library passthroughs.
func Is(err, target error) bool { return stderrors.Is(err, target) }
func As(err error, target any) bool { return stderrors.As(err, target) }
func Unwrap(err error) error { return stderrors.Unwrap(err) }
func Join(errs ...error) error { return stderrors.Join(errs...) }

// IsCategory reports whether err wraps an EnhancedError of the given category.
func IsCategory(err error, category ErrorCategory) bool {
	var ee *EnhancedError
	return As(err, &ee) && ee.Category == category
}

// IsNotFound is IsCategory(err, CategoryNotFound).
func IsNotFound(err error) bool {
	return IsCategory(err, CategoryNotFound)
}
