package config

import (
	"errors"
	"strings"

	"git.home.luguber.info/inful/flatsite/internal/retry"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and free-form fields before defaults
// are applied. It mutates c in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, errors.New("config nil")
	}
	res := &NormalizationResult{}

	lvl := logLevelNormalizer.NormalizeField("logging.level", string(c.Logging.Level))
	c.Logging.Level = lvl.Value
	res.add(lvl.Warning)

	format := logFormatNormalizer.NormalizeField("logging.format", string(c.Logging.Format))
	c.Logging.Format = format.Value
	res.add(format.Warning)

	mode := invalidationNormalizer.NormalizeField("cache.invalidation", string(c.Cache.Invalidation))
	c.Cache.Invalidation = mode.Value
	res.add(mode.Warning)

	if c.Notify.RetryBackoff != "" {
		backoff := retry.NormalizeBackoffField("notify.retry_backoff", string(c.Notify.RetryBackoff))
		c.Notify.RetryBackoff = backoff.Value
		res.add(backoff.Warning)
	}

	c.Site.SiteRoot = strings.TrimRight(strings.TrimSpace(c.Site.SiteRoot), "/")
	c.Engine.Markdown.HighlightStyle = strings.ToLower(strings.TrimSpace(c.Engine.Markdown.HighlightStyle))
	if c.Engine.Workers < 0 {
		res.add("engine.workers is negative, using default")
		c.Engine.Workers = 0
	}
	return res, nil
}

func (r *NormalizationResult) add(warning string) {
	if warning != "" {
		r.Warnings = append(r.Warnings, warning)
	}
}
