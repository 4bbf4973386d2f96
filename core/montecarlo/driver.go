package montecarlo

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/ldarsim/core/events"
	"github.com/kilianp07/ldarsim/core/logger"
	"github.com/kilianp07/ldarsim/core/monitoring"
	"github.com/kilianp07/ldarsim/core/program"
	"github.com/kilianp07/ldarsim/internal/eventbus"
)

// RunFunc builds and runs one isolated replicate with the given seed.
type RunFunc func(ctx context.Context, seed uint64) (*program.Result, error)

// Task is one replicate to run.
type Task struct {
	Program string
	Index   int
	Run     RunFunc
}

// ID returns the replicate identifier, e.g. "P_OGI#3".
func (t Task) ID() string { return fmt.Sprintf("%s#%d", t.Program, t.Index) }

// Outcome is the result of one replicate. Exactly one of Result and Err is set.
type Outcome struct {
	ID       string
	Program  string
	Index    int
	Seed     uint64
	Result   *program.Result
	Err      error
	Duration time.Duration
}

// Failed reports whether the replicate did not complete.
func (o Outcome) Failed() bool { return o.Err != nil }

// Config configures a Driver.
type Config struct {
	// Workers bounds concurrent replicates; <= 0 uses GOMAXPROCS.
	Workers  int
	BaseSeed uint64
	// Timeout bounds one replicate; zero disables it.
	Timeout time.Duration
}

// Driver runs replicate tasks on a bounded worker pool.
type Driver struct {
	cfg     Config
	bus     *eventbus.Bus[events.ReplicateEvent]
	monitor monitoring.Monitor
	log     logger.Logger
	now     func() time.Time
}

// NewDriver creates a Driver. bus and monitor may be nil.
func NewDriver(cfg Config, bus *eventbus.Bus[events.ReplicateEvent], monitor monitoring.Monitor, log logger.Logger) *Driver {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if monitor == nil {
		monitor = monitoring.NopMonitor{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Driver{cfg: cfg, bus: bus, monitor: monitor, log: log, now: time.Now}
}

// Workers returns the effective worker count.
func (d *Driver) Workers() int { return d.cfg.Workers }

// Run executes every task and returns one Outcome per task, in task order.
// A failing replicate never stops the others; a cancelled ctx makes the
// remaining replicates fail with the context error.
func (d *Driver) Run(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.Workers)
	d.log.Infof("running %d replicates on %d workers", len(tasks), d.cfg.Workers)
	for i, t := range tasks {
		g.Go(func() error {
			outcomes[i] = d.runOne(gctx, t)
			return nil
		})
	}
	_ = g.Wait() // errors are carried by each Outcome

	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
	}
	d.log.Infof("replicates done: %d ok, %d failed", len(outcomes)-failed, failed)
	return outcomes
}

func (d *Driver) runOne(ctx context.Context, t Task) (out Outcome) {
	seed := DeriveSeed(d.cfg.BaseSeed, t.Program, t.Index)
	out = Outcome{ID: t.ID(), Program: t.Program, Index: t.Index, Seed: seed}
	log := d.log.With(map[string]any{"program": t.Program, "replicate": t.Index, "seed": seed})
	start := d.now()

	d.publish(events.ReplicateEvent{
		ReplicateID: out.ID, Program: t.Program, Index: t.Index, Seed: seed,
		Stage: events.ReplicateStarted, Time: start,
	})

	defer func() {
		if r := recover(); r != nil {
			out.Result = nil
			out.Err = fmt.Errorf("replicate %s panicked: %v", out.ID, r)
			log.Debugf("panic stack: %s", debug.Stack())
		}
		out.Duration = d.now().Sub(start)
		d.finish(log, &out)
	}()

	if t.Run == nil {
		out.Err = fmt.Errorf("replicate %s: no run function", out.ID)
		return out
	}
	if err := ctx.Err(); err != nil {
		out.Err = fmt.Errorf("replicate %s not started: %w", out.ID, err)
		return out
	}
	rctx := ctx
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	res, err := t.Run(rctx, seed)
	if err != nil {
		out.Err = fmt.Errorf("replicate %s: %w", out.ID, err)
		return out
	}
	if res == nil {
		out.Err = fmt.Errorf("replicate %s: no result", out.ID)
		return out
	}
	out.Result = res
	return out
}

func (d *Driver) finish(log logger.Logger, out *Outcome) {
	ev := events.ReplicateEvent{
		ReplicateID: out.ID, Program: out.Program, Index: out.Index, Seed: out.Seed,
		Duration: out.Duration, Time: d.now(),
	}
	if out.Err != nil {
		log.Errorf("replicate failed: %v", out.Err)
		d.monitor.CaptureException(out.Err, monitoring.ReplicateTags(out.Program, out.Index, out.Seed))
		ev.Stage = events.ReplicateFailed
		ev.Err = out.Err
	} else {
		log.Debugf("replicate finished in %s", out.Duration)
		ev.Stage = events.ReplicateFinished
		ev.Totals = out.Result.Totals
	}
	d.publish(ev)
}

func (d *Driver) publish(ev events.ReplicateEvent) {
	if d.bus != nil {
		d.bus.Publish(ev)
	}
}
