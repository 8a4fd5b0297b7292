// Package config loads the flatsite YAML configuration: environment expansion,
// .env files, normalization, defaults and validation.
package config

import "git.home.luguber.info/inful/flatsite/internal/retry"

// Config is the root configuration document.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Engine     EngineConfig     `yaml:"engine"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	History    HistoryConfig    `yaml:"history"`
	Notify     NotifyConfig     `yaml:"notify"`
	Logging    LoggingConfig    `yaml:"logging"`

	path string
}

// SiteConfig describes the site served from one content root.
type SiteConfig struct {
	Name             string `yaml:"name"`
	Description      string `yaml:"description,omitempty"`
	SiteRoot         string `yaml:"site_root"`      // URL prefix the site is mounted under
	DataDirectory    string `yaml:"data_directory"` // contains Entries/; relative to the config file
	Templates        string `yaml:"templates"`      // template set name
	EntriesPerPage   int    `yaml:"entries_per_page"`
	StaticGeneration bool   `yaml:"static_generation,omitempty"`
}

// EngineConfig tunes the content pipeline.
type EngineConfig struct {
	Workers       int            `yaml:"workers"`
	DisableCache  bool           `yaml:"disable_cache,omitempty"`
	Markdown      MarkdownConfig `yaml:"markdown"`
	GitTimestamps bool           `yaml:"git_timestamps,omitempty"`
}

// MarkdownConfig configures the Markdown formatter.
type MarkdownConfig struct {
	ServerSideHighlight bool   `yaml:"server_side_highlight"`
	HighlightStyle      string `yaml:"highlight_style"`
}

// CacheConfig selects how cached generations are invalidated.
type CacheConfig struct {
	Invalidation    InvalidationMode `yaml:"invalidation"`
	TTL             string           `yaml:"ttl"`                        // Go duration
	RefreshInterval string           `yaml:"refresh_interval,omitempty"` // Go duration; empty disables
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// MonitoringConfig represents monitoring endpoints.
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
}

// MonitoringMetrics represents metrics configuration.
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration.
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// HistoryConfig enables the SQLite generation history when Path is set.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig enables NATS generation notifications when NATSURL is set.
type NotifyConfig struct {
	NATSURL string `yaml:"nats_url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Stream  string `yaml:"stream,omitempty"`

	// Publish retries; unset fields use retry.DefaultPolicy.
	RetryBackoff retry.BackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitial string            `yaml:"retry_initial,omitempty"`
	RetryMax     string            `yaml:"retry_max,omitempty"`
	MaxRetries   *int              `yaml:"max_retries,omitempty"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Root returns the content root handed to the engine.
func (c *Config) Root() string { return c.Site.DataDirectory }
