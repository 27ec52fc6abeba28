// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Listing lifecycle metrics
	IncHomeCreated()
	IncHomeUpdated()
	IncHomeDeleted()

	// Prerender cache metrics
	IncPrerenderHit()
	IncPrerenderMiss()
	IncPrerenderBuild()
	ObserveBuildDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
