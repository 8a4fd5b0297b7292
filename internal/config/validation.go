package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/retry"
)

// ValidateConfig validates a normalized configuration with defaults applied.
func ValidateConfig(c *Config) error {
	checks := []func(*Config) error{
		validateSite,
		validateEngine,
		validateCache,
		validateServer,
		validateMonitoring,
		validateNotify,
	}
	for _, check := range checks {
		if err := check(c); err != nil {
			return err
		}
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return errors.ConfigError(fmt.Sprintf("invalid %s: %s", field, fmt.Sprintf(format, args...))).
		WithContext("field", field).
		Build()
}

func validateSite(c *Config) error {
	if c.Site.EntriesPerPage < 1 {
		return invalid("site.entries_per_page", "must be at least 1, got %d", c.Site.EntriesPerPage)
	}
	if c.Site.SiteRoot != "" && !strings.HasPrefix(c.Site.SiteRoot, "/") {
		return invalid("site.site_root", "must start with '/', got %q", c.Site.SiteRoot)
	}
	return nil
}

func validateEngine(c *Config) error {
	if c.Engine.Markdown.ServerSideHighlight {
		if _, ok := styles.Registry[c.Engine.Markdown.HighlightStyle]; !ok {
			return invalid("engine.markdown.highlight_style", "unknown style %q", c.Engine.Markdown.HighlightStyle)
		}
	}
	return nil
}

func validateCache(c *Config) error {
	if _, err := positiveDuration("cache.ttl", c.Cache.TTL); err != nil {
		return err
	}
	if c.Cache.RefreshInterval != "" {
		if _, err := positiveDuration("cache.refresh_interval", c.Cache.RefreshInterval); err != nil {
			return err
		}
	}
	return nil
}

func validateServer(c *Config) error {
	for field, value := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if _, err := positiveDuration(field, value); err != nil {
			return err
		}
	}
	return nil
}

func validateMonitoring(c *Config) error {
	m := c.Monitoring
	if !strings.HasPrefix(m.Health.Path, "/") {
		return invalid("monitoring.health.path", "must start with '/', got %q", m.Health.Path)
	}
	if !strings.HasPrefix(m.Metrics.Path, "/") {
		return invalid("monitoring.metrics.path", "must start with '/', got %q", m.Metrics.Path)
	}
	if m.Metrics.Enabled && m.Metrics.Path == m.Health.Path {
		return invalid("monitoring.metrics.path", "collides with health path %q", m.Health.Path)
	}
	return nil
}

func validateNotify(c *Config) error {
	n := c.Notify
	for field, value := range map[string]string{
		"notify.retry_initial": n.RetryInitial,
		"notify.retry_max":     n.RetryMax,
	} {
		if value == "" {
			continue
		}
		if _, err := positiveDuration(field, value); err != nil {
			return err
		}
	}
	if n.MaxRetries != nil && *n.MaxRetries < 0 {
		return invalid("notify.max_retries", "cannot be negative, got %d", *n.MaxRetries)
	}
	return nil
}

func positiveDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, invalid(field, "%v", err)
	}
	if d <= 0 {
		return 0, invalid(field, "must be positive, got %s", value)
	}
	return d, nil
}

// TTLDuration returns the parsed cache TTL.
func (c CacheConfig) TTLDuration() time.Duration { return mustDuration(c.TTL) }

// RefreshDuration returns the refresh interval, zero when disabled.
func (c CacheConfig) RefreshDuration() time.Duration { return mustDuration(c.RefreshInterval) }

// ReadTimeoutDuration returns the parsed server read timeout.
func (s ServerConfig) ReadTimeoutDuration() time.Duration { return mustDuration(s.ReadTimeout) }

// WriteTimeoutDuration returns the parsed server write timeout.
func (s ServerConfig) WriteTimeoutDuration() time.Duration { return mustDuration(s.WriteTimeout) }

// ShutdownTimeoutDuration returns the parsed shutdown timeout.
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(s.ShutdownTimeout)
}

// RetryPolicy returns the publish retry policy.
func (n NotifyConfig) RetryPolicy() retry.Policy {
	retries := -1
	if n.MaxRetries != nil {
		retries = *n.MaxRetries
	}
	return retry.NewPolicy(n.RetryBackoff, mustDuration(n.RetryInitial), mustDuration(n.RetryMax), retries)
}

// mustDuration parses a value that already passed validation; invalid input yields zero.
func mustDuration(v string) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0
	}
	return d
}
