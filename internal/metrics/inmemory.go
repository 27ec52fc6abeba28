package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	HomesCreated         uint64
	HomesUpdated         uint64
	HomesDeleted         uint64
	PrerenderHits        uint64
	PrerenderMisses      uint64
	PrerenderBuilds      uint64
	BuildDurationCount   uint64
	BuildDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	homesCreated         uint64
	homesUpdated         uint64
	homesDeleted         uint64
	prerenderHits        uint64
	prerenderMisses      uint64
	prerenderBuilds      uint64
	buildDurationCount   uint64
	buildDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		HomesCreated:         atomic.LoadUint64(&m.homesCreated),
		HomesUpdated:         atomic.LoadUint64(&m.homesUpdated),
		HomesDeleted:         atomic.LoadUint64(&m.homesDeleted),
		PrerenderHits:        atomic.LoadUint64(&m.prerenderHits),
		PrerenderMisses:      atomic.LoadUint64(&m.prerenderMisses),
		PrerenderBuilds:      atomic.LoadUint64(&m.prerenderBuilds),
		BuildDurationCount:   atomic.LoadUint64(&m.buildDurationCount),
		BuildDurationTotalNs: atomic.LoadInt64(&m.buildDurationTotalNs),
	}
}

// IncHomeCreated increments the created counter.
func (m *InMemoryRecorder) IncHomeCreated() {
	atomic.AddUint64(&m.homesCreated, 1)
}

// IncHomeUpdated increments the updated counter.
func (m *InMemoryRecorder) IncHomeUpdated() {
	atomic.AddUint64(&m.homesUpdated, 1)
}

// IncHomeDeleted increments the deleted counter.
func (m *InMemoryRecorder) IncHomeDeleted() {
	atomic.AddUint64(&m.homesDeleted, 1)
}

// IncPrerenderHit increments the prerender hit counter.
func (m *InMemoryRecorder) IncPrerenderHit() {
	atomic.AddUint64(&m.prerenderHits, 1)
}

// IncPrerenderMiss increments the prerender miss counter.
func (m *InMemoryRecorder) IncPrerenderMiss() {
	atomic.AddUint64(&m.prerenderMisses, 1)
}

// IncPrerenderBuild increments the prerender build counter.
func (m *InMemoryRecorder) IncPrerenderBuild() {
	atomic.AddUint64(&m.prerenderBuilds, 1)
}

// ObserveBuildDuration records a prerender build duration.
func (m *InMemoryRecorder) ObserveBuildDuration(duration time.Duration) {
	atomic.AddUint64(&m.buildDurationCount, 1)
	atomic.AddInt64(&m.buildDurationTotalNs, duration.Nanoseconds())
}
