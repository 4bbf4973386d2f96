package program

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/ldarsim/core/crew"
	"github.com/kilianp07/ldarsim/core/flags"
	"github.com/kilianp07/ldarsim/core/logger"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/core/sim"
)

// secondsPerDay converts g/s leak rates to daily mass.
const secondsPerDay = 86400

// Worker is one field crew as seen by the orchestrator.
type Worker interface {
	ID() string
	WorkADay(flags *[]model.CandidateFlag) error
}

// Options configures a Runner.
type Options struct {
	RunID     string
	Program   string
	Replicate int
	Seed      uint64
	Methods   []model.MethodConfig
	Context   *sim.SimulationContext
	Flags     flags.Sink
	Metrics   coremetrics.MetricsSink
	Log       logger.Logger
}

// Runner drives one replicate day by day.
type Runner struct {
	opts    Options
	ctx     *sim.SimulationContext
	crews   []Worker
	flags   flags.Sink
	metrics coremetrics.MetricsSink
	log     logger.Logger
	today   []model.CandidateFlag
}

// NewRunner validates the simulation context against the methods and
// builds the crews, n_crews per method in configuration order.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Context == nil {
		return nil, errors.New("program: nil simulation context")
	}
	if len(opts.Methods) == 0 {
		return nil, fmt.Errorf("program %s: no methods configured", opts.Program)
	}
	for _, m := range opts.Methods {
		if err := m.Validate(); err != nil {
			return nil, err
		}
	}
	if err := opts.Context.Validate(opts.Methods); err != nil {
		return nil, fmt.Errorf("program %s: %w", opts.Program, err)
	}
	if opts.Log == nil {
		opts.Log = logger.NopLogger{}
	}
	if opts.Flags == nil {
		opts.Flags = flags.NopSink{}
	}
	if opts.Metrics == nil {
		opts.Metrics = coremetrics.NopSink{}
	}

	for _, s := range opts.Context.Registry.Sites() {
		for _, m := range opts.Methods {
			s.Method(m.Name)
		}
	}

	r := &Runner{
		opts:    opts,
		ctx:     opts.Context,
		flags:   opts.Flags,
		metrics: opts.Metrics,
		log:     opts.Log,
	}
	for _, m := range opts.Methods {
		for i := 1; i <= m.NCrews; i++ {
			id := fmt.Sprintf("%s-%d", m.Name, i)
			c, err := crew.New(id, m, opts.Context, opts.Log.With(map[string]any{"crew": id}))
			if err != nil {
				return nil, fmt.Errorf("program %s: %w", opts.Program, err)
			}
			r.crews = append(r.crews, c)
		}
	}
	return r, nil
}

// Crews returns the crews in the order they work each day.
func (r *Runner) Crews() []Worker { return r.crews }

// Step simulates the current day and advances the clock.
func (r *Runner) Step(ctx context.Context) error {
	clock := r.ctx.Clock
	if clock.Done() {
		return errors.New("program: simulation already finished")
	}
	t := clock.Timestep()
	r.rollCounters(clock.YearStart() && t > 0)

	r.today = r.today[:0]
	for _, c := range r.crews {
		if err := c.WorkADay(&r.today); err != nil {
			return fmt.Errorf("timestep %d crew %s: %w", t, c.ID(), err)
		}
	}

	r.recordDay(t)
	if len(r.today) > 0 {
		batch := flags.Batch{
			RunID:     r.opts.RunID,
			Program:   r.opts.Program,
			Replicate: r.opts.Replicate,
			Timestep:  t,
			Date:      clock.Current(),
			Flags:     r.today,
		}
		if err := r.flags.Forward(ctx, batch); err != nil {
			return fmt.Errorf("timestep %d: forward flags: %w", t, err)
		}
	}
	if err := r.metrics.RecordTimestep(r.timestepRecord(t)); err != nil {
		r.log.Warnf("record timestep %d: %v", t, err)
	}
	clock.NextDay()
	return nil
}

// rollCounters opens a new day on every site: neglect grows by one day and
// the attempted marks are cleared. On a new year the annual quotas restart.
func (r *Runner) rollCounters(newYear bool) {
	for _, s := range r.ctx.Registry.Sites() {
		for _, m := range r.opts.Methods {
			st := s.Method(m.Name)
			if newYear {
				st.SurveysDoneThisYear = 0
			}
			st.TimeSinceLastSurvey++
			st.AttemptedToday = false
		}
	}
	if newYear {
		r.log.Debugf("annual survey quotas reset on %s", r.ctx.Clock.Current().Format("2006-01-02"))
	}
}

func (r *Runner) recordDay(t int) {
	series := r.ctx.Series
	if t >= series.Len() {
		return
	}
	var active int
	var rate float64
	for _, l := range r.ctx.Registry.Leaks() {
		if l.Active() {
			active++
			rate += l.Rate
		}
	}
	series.Dates[t] = r.ctx.Clock.Current()
	series.ActiveLeaks[t] = active
	series.DailyEmissions[t] = rate * secondsPerDay / 1000
	series.CandidateFlags[t] = len(r.today)
}

func (r *Runner) timestepRecord(t int) coremetrics.TimestepRecord {
	series := r.ctx.Series
	rec := coremetrics.TimestepRecord{
		RunID:        r.opts.RunID,
		Program:      r.opts.Program,
		Replicate:    r.opts.Replicate,
		Timestep:     t,
		Date:         r.ctx.Clock.Current(),
		SitesVisited: make(map[string]int, len(r.opts.Methods)),
		MethodCost:   make(map[string]float64, len(r.opts.Methods)),
		MissedLeaks:  make(map[string]int, len(r.opts.Methods)),
	}
	if t >= series.Len() {
		return rec
	}
	for _, m := range r.opts.Methods {
		rec.SitesVisited[m.Name] = series.SitesVisited[m.Name][t]
		rec.MethodCost[m.Name] = series.MethodCost[m.Name][t]
		rec.MissedLeaks[m.Name] = series.MissedLeaks[m.Name][t]
	}
	rec.TotalCost = series.TotalDailyCost[t]
	rec.CandidateFlags = series.CandidateFlags[t]
	rec.ActiveLeaks = series.ActiveLeaks[t]
	rec.EmissionsKg = series.DailyEmissions[t]
	return rec
}

// Run steps until the clock is done, checking ctx between days.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	r.log.Infof("replicate started: %d days, %d crews", r.ctx.Clock.Timesteps(), len(r.crews))
	for !r.ctx.Clock.Done() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("timestep %d: %w", r.ctx.Clock.Timestep(), err)
		}
		if err := r.Step(ctx); err != nil {
			return nil, err
		}
	}
	res := r.result()
	r.log.Infof("replicate finished: %d visits, %d flags, cost %.0f",
		res.Totals.SitesVisited, res.Totals.CandidateFlags, res.Totals.TotalCost)
	return res, nil
}
