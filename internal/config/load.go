package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "flatsite.yaml"

// Load reads, expands, normalizes, defaults and validates the configuration at path.
func Load(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.ConfigError("cannot resolve configuration path").WithCause(err).Build()
	}
	dir := filepath.Dir(abs)

	if _, err := loadEnvFiles(dir); err != nil {
		return nil, errors.ConfigError("failed to load environment file").WithCause(err).Build()
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NotFoundError("configuration file not found").
				WithContext("path", abs).
				Build()
		}
		return nil, errors.FileSystemError("failed to read configuration file").
			WithCause(err).
			WithContext("path", abs).
			Build()
	}

	cfg, err := Parse(data, dir)
	if err != nil {
		return nil, err
	}
	cfg.path = abs
	return cfg, nil
}

// Parse decodes configuration bytes. Relative paths resolve against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.ConfigError("failed to parse configuration").WithCause(err).Build()
	}

	res, err := NormalizeConfig(&cfg)
	if err != nil {
		return nil, errors.InternalError("normalize configuration").WithCause(err).Build()
	}
	for _, w := range res.Warnings {
		slog.Warn("Configuration normalized", slog.String("detail", w))
	}

	applyDefaults(&cfg, baseDir)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Example returns the configuration written by Init.
func Example() *Config {
	return &Config{
		Site: SiteConfig{
			Name:           "My flatsite",
			Description:    "Entries served straight from disk",
			DataDirectory:  DefaultDataDirectory,
			Templates:      DefaultTemplates,
			EntriesPerPage: DefaultEntriesPerPage,
		},
		Engine: EngineConfig{
			Workers: DefaultWorkers,
			Markdown: MarkdownConfig{
				ServerSideHighlight: true,
				HighlightStyle:      DefaultHighlightStyle,
			},
		},
		Cache: CacheConfig{
			Invalidation: InvalidationWatchTTL,
			TTL:          DefaultTTL,
		},
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: DefaultMetricsPath},
			Health:  MonitoringHealth{Path: DefaultHealthPath},
		},
		Notify: NotifyConfig{
			NATSURL: "${FLATSITE_NATS_URL}",
			Subject: DefaultNotifySubject,
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// Init writes an example configuration file and an empty Entries directory
// next to it.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	data, err := yaml.Marshal(Example())
	if err != nil {
		return errors.InternalError("failed to marshal example configuration").WithCause(err).Build()
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.FileSystemError("failed to write configuration file").WithCause(err).WithContext("path", path).Build()
	}

	entries := filepath.Join(filepath.Dir(path), DefaultDataDirectory, "Entries")
	if err := os.MkdirAll(entries, 0o755); err != nil {
		return errors.FileSystemError("failed to create entries directory").WithCause(err).WithContext("path", entries).Build()
	}
	return nil
}
