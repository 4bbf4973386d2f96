package events

import (
	"time"

	"github.com/kilianp07/ldarsim/core/sim"
)

// ReplicateStage identifies where in its lifecycle a replicate is.
type ReplicateStage string

const (
	ReplicateStarted  ReplicateStage = "started"
	ReplicateFinished ReplicateStage = "finished"
	ReplicateFailed   ReplicateStage = "failed"
)

// ReplicateEvent is published by the Monte-Carlo driver for every
// replicate transition. Totals is only set on ReplicateFinished and Err
// only on ReplicateFailed.
type ReplicateEvent struct {
	ReplicateID string
	Program     string
	Index       int
	Seed        uint64
	Stage       ReplicateStage
	Duration    time.Duration
	Totals      sim.Totals
	Err         error
	Time        time.Time
}
