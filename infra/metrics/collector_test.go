package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/ldarsim/core/events"
	"github.com/kilianp07/ldarsim/internal/eventbus"
)

type replicateLog struct {
	mu     sync.Mutex
	stages []events.ReplicateStage
}

func (r *replicateLog) RecordReplicate(ev events.ReplicateEvent) error {
	r.mu.Lock()
	r.stages = append(r.stages, ev.Stage)
	r.mu.Unlock()
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New[events.ReplicateEvent]()
	rec := &replicateLog{}
	done := StartEventCollector(context.Background(), bus, rec)

	bus.Publish(events.ReplicateEvent{Stage: events.ReplicateStarted})
	bus.Publish(events.ReplicateEvent{Stage: events.ReplicateFinished})
	bus.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	assert.Equal(t, []events.ReplicateStage{events.ReplicateStarted, events.ReplicateFinished}, rec.stages)
}

func TestStartEventCollector_NilInputs(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, nil)
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel")
	}
}
