package errors

import "net/http"

// ErrorCategory groups errors by what failed.
type ErrorCategory string

const (
	CategoryConfig     ErrorCategory = "config"     // registries, routes, configuration files
	CategoryValidation ErrorCategory = "validation" // bad user input
	CategoryNotFound   ErrorCategory = "not_found"  // no route, unknown index
	CategoryFileSystem ErrorCategory = "filesystem" // reading content from disk
	CategoryFormat     ErrorCategory = "format"     // front matter and body transformation
	CategoryCrawl      ErrorCategory = "crawl"      // content discovery
	CategoryCache      ErrorCategory = "cache"      // engine generations
	CategoryNetwork    ErrorCategory = "network"    // NATS and other remote peers
	CategoryStore      ErrorCategory = "store"      // generation history database
	CategoryRuntime    ErrorCategory = "runtime"    // process lifecycle
	CategoryInternal   ErrorCategory = "internal"   // bugs
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"
	SeverityError   ErrorSeverity = "error"
	SeverityWarning ErrorSeverity = "warning"
)

// RetryStrategy tells callers whether and how to retry.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryImmediate  RetryStrategy = "immediate"
	RetryBackoff    RetryStrategy = "backoff"
	RetryUserAction RetryStrategy = "user" // fix the input, then retry
)

// traits are the per-category defaults and presentation.
type traits struct {
	severity ErrorSeverity
	retry    RetryStrategy
	status   int // HTTP status
	exit     int // process exit code
}

var categoryTraits = map[ErrorCategory]traits{
	CategoryConfig:     {SeverityFatal, RetryUserAction, http.StatusInternalServerError, 7},
	CategoryValidation: {SeverityFatal, RetryUserAction, http.StatusBadRequest, 2},
	CategoryNotFound:   {SeverityError, RetryNever, http.StatusNotFound, 4},
	CategoryFileSystem: {SeverityError, RetryBackoff, http.StatusInternalServerError, 11},
	CategoryFormat:     {SeverityError, RetryNever, http.StatusInternalServerError, 11},
	CategoryCrawl:      {SeverityError, RetryBackoff, http.StatusInternalServerError, 11},
	CategoryCache:      {SeverityError, RetryImmediate, http.StatusServiceUnavailable, 12},
	CategoryNetwork:    {SeverityError, RetryBackoff, http.StatusBadGateway, 8},
	CategoryStore:      {SeverityError, RetryBackoff, http.StatusBadGateway, 8},
	CategoryRuntime:    {SeverityFatal, RetryNever, http.StatusServiceUnavailable, 12},
	CategoryInternal:   {SeverityFatal, RetryNever, http.StatusInternalServerError, 10},
}

var unknownTraits = traits{SeverityError, RetryNever, http.StatusInternalServerError, 1}

func traitsOf(c ErrorCategory) traits {
	if t, ok := categoryTraits[c]; ok {
		return t
	}
	return unknownTraits
}
