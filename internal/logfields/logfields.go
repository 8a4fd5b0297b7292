package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRoot       = "root"
	KeyGeneration = "generation"
	KeyPath       = "path"
	KeyFile       = "file"
	KeyCrawler    = "crawler"
	KeyStep       = "step"
	KeyIndexer    = "indexer"
	KeyRoute      = "route"
	KeyView       = "view"
	KeyCount      = "count"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyJob        = "job"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyRequestID  = "request_id"
	KeySubject    = "subject"
	KeyURL        = "url"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Root(r string) slog.Attr          { return slog.String(KeyRoot, r) }
func Generation(id string) slog.Attr   { return slog.String(KeyGeneration, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Crawler(name string) slog.Attr    { return slog.String(KeyCrawler, name) }
func Step(name string) slog.Attr       { return slog.String(KeyStep, name) }
func Indexer(name string) slog.Attr    { return slog.String(KeyIndexer, name) }
func Route(pattern string) slog.Attr   { return slog.String(KeyRoute, pattern) }
func View(name string) slog.Attr       { return slog.String(KeyView, name) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Job(name string) slog.Attr        { return slog.String(KeyJob, name) }
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
