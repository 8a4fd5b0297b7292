// Package errors provides the classified errors used across flatsite.
//
// Every error carries an ErrorCategory. The category fixes the defaults for
// severity and retry strategy and decides how the error surfaces: the HTTP
// status written by HTTPErrorAdapter and the process exit code chosen by
// CLIErrorAdapter.
//
//	err := errors.ConfigError("no formatter registered for extension").
//		WithContext("extension", ".rst").
//		WithCause(format.ErrNoFormatter).
//		Build()
package errors
