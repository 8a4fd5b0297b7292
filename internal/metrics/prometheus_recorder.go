package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "flatsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	buildOutcome  *prom.CounterVec
	entries       *prom.GaugeVec
	cacheLookups  *prom.CounterVec
	dispatches    *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual generation stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Total engine generation build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "generation_outcomes_total",
			Help:      "Engine generation builds by outcome",
		}, []string{"outcome"}),
		entries: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "entries",
			Help:      "Entries in the current generation per content root",
		}, []string{"root"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Engine cache lookups by result",
		}, []string{"result"}),
		dispatches: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "dispatches_total",
			Help:      "Dispatched requests by view",
		}, []string{"view"}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.buildOutcome, pr.entries, pr.cacheLookups, pr.dispatches)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcome) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetEntries(root string, n int) {
	if p == nil {
		return
	}
	p.entries.WithLabelValues(root).Set(float64(n))
}

func (p *PrometheusRecorder) IncCacheLookup(result CacheResult) {
	if p == nil {
		return
	}
	p.cacheLookups.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncDispatch(view string) {
	if p == nil {
		return
	}
	if view == "" {
		view = "none"
	}
	p.dispatches.WithLabelValues(view).Inc()
}
