package errors

import (
	stderrors "errors"
	"maps"
)

// ClassifiedError is an error with a category, severity, retry strategy and
// structured context. Values are immutable once built.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	cause    error
	context  map[string]any
}

func (e *ClassifiedError) Error() string {
	s := string(e.category) + ": " + e.message
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory      { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity      { return e.severity }
func (e *ClassifiedError) RetryStrategy() RetryStrategy { return e.retry }
func (e *ClassifiedError) Message() string              { return e.message }

// Context returns a copy of the error context.
func (e *ClassifiedError) Context() map[string]any { return maps.Clone(e.context) }

// Value returns one context value.
func (e *ClassifiedError) Value(key string) (any, bool) {
	v, ok := e.context[key]
	return v, ok
}

// CanRetry reports whether repeating the operation unchanged may succeed.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryImmediate || e.retry == RetryBackoff
}

// AsClassified returns the first ClassifiedError in the chain of err.
func AsClassified(err error) (*ClassifiedError, bool) {
	var c *ClassifiedError
	if stderrors.As(err, &c) {
		return c, true
	}
	return nil, false
}

// IsClassified reports whether err wraps a ClassifiedError.
func IsClassified(err error) bool {
	_, ok := AsClassified(err)
	return ok
}

// HasCategory reports whether the outermost ClassifiedError in err has category c.
func HasCategory(err error, c ErrorCategory) bool {
	ce, ok := AsClassified(err)
	return ok && ce.category == c
}

// GetCategory returns the category of err, CategoryInternal when unclassified.
func GetCategory(err error) ErrorCategory {
	if c, ok := AsClassified(err); ok {
		return c.category
	}
	return CategoryInternal
}

// GetRetryStrategy returns the retry strategy of err, RetryNever when unclassified.
func GetRetryStrategy(err error) RetryStrategy {
	if c, ok := AsClassified(err); ok {
		return c.retry
	}
	return RetryNever
}
