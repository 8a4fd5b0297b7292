package config

import (
	"path/filepath"
)

const (
	DefaultSiteName        = "flatsite"
	DefaultTemplates       = "Default"
	DefaultEntriesPerPage  = 5
	DefaultDataDirectory   = "data"
	DefaultWorkers         = 8
	DefaultHighlightStyle  = "github"
	DefaultTTL             = "60m"
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = "10s"
	DefaultWriteTimeout    = "30s"
	DefaultShutdownTimeout = "10s"
	DefaultMetricsPath     = "/metrics"
	DefaultHealthPath      = "/health"
	DefaultNotifySubject   = "flatsite.generations"
)

// applyDefaults fills unset fields. baseDir resolves relative paths.
func applyDefaults(c *Config, baseDir string) {
	setString(&c.Site.Name, DefaultSiteName)
	setString(&c.Site.Templates, DefaultTemplates)
	setString(&c.Site.DataDirectory, DefaultDataDirectory)
	if c.Site.EntriesPerPage == 0 {
		c.Site.EntriesPerPage = DefaultEntriesPerPage
	}
	c.Site.DataDirectory = resolve(baseDir, c.Site.DataDirectory)

	if c.Engine.Workers == 0 {
		c.Engine.Workers = DefaultWorkers
	}
	setString(&c.Engine.Markdown.HighlightStyle, DefaultHighlightStyle)

	setString(&c.Cache.TTL, DefaultTTL)

	setString(&c.Server.Addr, DefaultAddr)
	setString(&c.Server.ReadTimeout, DefaultReadTimeout)
	setString(&c.Server.WriteTimeout, DefaultWriteTimeout)
	setString(&c.Server.ShutdownTimeout, DefaultShutdownTimeout)

	setString(&c.Monitoring.Metrics.Path, DefaultMetricsPath)
	setString(&c.Monitoring.Health.Path, DefaultHealthPath)

	if c.History.Path != "" && c.History.Path != ":memory:" {
		c.History.Path = resolve(baseDir, c.History.Path)
	}
	if c.Notify.NATSURL != "" {
		setString(&c.Notify.Subject, DefaultNotifySubject)
	}
}

func setString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func resolve(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}
