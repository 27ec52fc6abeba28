package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncHomeCreated is a no-op.
func (n *NoopRecorder) IncHomeCreated() {}

// IncHomeUpdated is a no-op.
func (n *NoopRecorder) IncHomeUpdated() {}

// IncHomeDeleted is a no-op.
func (n *NoopRecorder) IncHomeDeleted() {}

// IncPrerenderHit is a no-op.
func (n *NoopRecorder) IncPrerenderHit() {}

// IncPrerenderMiss is a no-op.
func (n *NoopRecorder) IncPrerenderMiss() {}

// IncPrerenderBuild is a no-op.
func (n *NoopRecorder) IncPrerenderBuild() {}

// ObserveBuildDuration is a no-op.
func (n *NoopRecorder) ObserveBuildDuration(duration time.Duration) {}
