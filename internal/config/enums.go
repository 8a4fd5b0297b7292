package config

import (
	"git.home.luguber.info/inful/flatsite/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer("log level", map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

// NormalizeLogLevel maps raw onto a LogLevel, defaulting to info.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer("log format", map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

// NormalizeLogFormat maps raw onto a LogFormat, defaulting to text.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// InvalidationMode selects the cache invalidation collaborator.
type InvalidationMode string

const (
	InvalidationWatch    InvalidationMode = "watch"
	InvalidationTTL      InvalidationMode = "ttl"
	InvalidationWatchTTL InvalidationMode = "watch+ttl"
	InvalidationNone     InvalidationMode = "none"
)

var invalidationNormalizer = normalization.NewNormalizer("invalidation mode", map[string]InvalidationMode{
	"watch":     InvalidationWatch,
	"fsnotify":  InvalidationWatch,
	"ttl":       InvalidationTTL,
	"watch+ttl": InvalidationWatchTTL,
	"ttl+watch": InvalidationWatchTTL,
	"none":      InvalidationNone,
	"off":       InvalidationNone,
}, InvalidationWatch)

// NormalizeInvalidationMode maps raw onto an InvalidationMode, defaulting to watch.
func NormalizeInvalidationMode(raw string) InvalidationMode {
	return invalidationNormalizer.Normalize(raw)
}
