package metrics

import (
	"context"

	"github.com/kilianp07/ldarsim/core/events"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
	"github.com/kilianp07/ldarsim/internal/eventbus"
)

// StartEventCollector subscribes to the replicate event bus and forwards
// events to rec. It stops when the context is canceled or the bus is
// closed; the returned channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.Bus[events.ReplicateEvent], rec coremetrics.ReplicateRecorder) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || rec == nil {
		close(done)
		return done
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				_ = rec.RecordReplicate(ev)
			}
		}
	}()
	return done
}
