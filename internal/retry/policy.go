// Package retry runs operations that may fail transiently, backing off between
// attempts according to a Policy.
package retry

import (
	"time"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/foundation/normalization"
)

// BackoffMode selects how the delay grows between attempts.
type BackoffMode string

const (
	BackoffFixed       BackoffMode = "fixed"
	BackoffLinear      BackoffMode = "linear"
	BackoffExponential BackoffMode = "exponential"
)

var backoffNormalizer = normalization.NewNormalizer("retry backoff", map[string]BackoffMode{
	"fixed":       BackoffFixed,
	"constant":    BackoffFixed,
	"linear":      BackoffLinear,
	"exponential": BackoffExponential,
	"exp":         BackoffExponential,
}, BackoffLinear)

// NormalizeBackoffField maps raw onto a BackoffMode for the named config field.
func NormalizeBackoffField(field, raw string) normalization.Result[BackoffMode] {
	return backoffNormalizer.NormalizeField(field, raw)
}

// Policy encapsulates retry/backoff settings for transient failures.
// It is immutable after construction.
type Policy struct {
	Mode       BackoffMode
	Initial    time.Duration // base delay
	Max        time.Duration // cap for growth
	MaxRetries int           // attempts after the first failure
}

// DefaultPolicy returns linear backoff from 1s capped at 30s with 2 retries.
func DefaultPolicy() Policy {
	return Policy{Mode: BackoffLinear, Initial: time.Second, Max: 30 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy from raw config fields; zero values fall back to defaults.
func NewPolicy(mode BackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if m, ok := backoffNormalizer.Lookup(string(mode)); ok {
		p.Mode = m
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before the given retry (1-based: first retry => 1).
func (p Policy) Delay(retryCount int) time.Duration {
	if retryCount <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case BackoffFixed:
		d = p.Initial
	case BackoffExponential:
		shift := min(retryCount-1, 30)
		d = p.Initial << shift
		if d <= 0 {
			d = p.Max
		}
	default:
		d = time.Duration(retryCount) * p.Initial
	}
	return min(d, p.Max)
}

// Validate reports a policy that cannot be applied.
func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return errors.ConfigError("retry initial delay must be positive").Build()
	case p.Max <= 0:
		return errors.ConfigError("retry max delay must be positive").Build()
	case p.MaxRetries < 0:
		return errors.ConfigError("retry count cannot be negative").Build()
	}
	return nil
}
