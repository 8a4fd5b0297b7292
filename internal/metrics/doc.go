// Package metrics provides the observability hooks for engine generations, the
// engine cache and request dispatch.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics can be enabled without touching call sites:
//
//	reg := prometheus.NewRegistry()
//	cache := enginecache.New(enginecache.WithRecorder(metrics.NewPrometheusRecorder(reg)))
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
package metrics
