package metrics

import "time"

// CacheResult labels engine cache lookups.
type CacheResult string

const (
	CacheHit     CacheResult = "hit"
	CacheMiss    CacheResult = "miss"
	CacheEvicted CacheResult = "evicted"
)

// BuildOutcome labels finished generation builds.
type BuildOutcome string

const (
	BuildSuccess BuildOutcome = "success"
	BuildFailed  BuildOutcome = "failed"
)

// Recorder defines observability hooks for generations and dispatch. Implementations
// may forward to Prometheus, OpenTelemetry, etc.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
	SetEntries(root string, n int)
	IncCacheLookup(result CacheResult)
	IncDispatch(view string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)               {}
func (NoopRecorder) SetEntries(string, int)                     {}
func (NoopRecorder) IncCacheLookup(CacheResult)                 {}
func (NoopRecorder) IncDispatch(string)                         {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
