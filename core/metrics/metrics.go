package metrics

import (
	"time"

	"github.com/kilianp07/ldarsim/core/events"
)

// TimestepRecord summarises one simulated day of one replicate.
type TimestepRecord struct {
	RunID     string
	Program   string
	Replicate int
	Timestep  int
	Date      time.Time
	// Per-method values for the day.
	SitesVisited map[string]int
	MethodCost   map[string]float64
	MissedLeaks  map[string]int
	// Program-wide values for the day.
	TotalCost      float64
	CandidateFlags int
	ActiveLeaks    int
	EmissionsKg    float64
}

// MetricsSink records per-timestep simulation metrics.
type MetricsSink interface {
	RecordTimestep(rec TimestepRecord) error
}

// ReplicateRecorder records replicate lifecycle events.
type ReplicateRecorder interface {
	RecordReplicate(ev events.ReplicateEvent) error
}

// Closer is implemented by sinks holding resources.
type Closer interface {
	Close() error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordTimestep(TimestepRecord) error         { return nil }
func (NopSink) RecordReplicate(events.ReplicateEvent) error { return nil }
