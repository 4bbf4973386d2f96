package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	_ "github.com/kilianp07/ldarsim/app/plugins"
	"github.com/kilianp07/ldarsim/config"
	"github.com/kilianp07/ldarsim/core/events"
	"github.com/kilianp07/ldarsim/core/flags"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
	coremon "github.com/kilianp07/ldarsim/core/monitoring"
	"github.com/kilianp07/ldarsim/core/montecarlo"
	"github.com/kilianp07/ldarsim/core/program"
	"github.com/kilianp07/ldarsim/core/sim"
	"github.com/kilianp07/ldarsim/infra/input"
	"github.com/kilianp07/ldarsim/infra/logger"
	inframetrics "github.com/kilianp07/ldarsim/infra/metrics"
	inframon "github.com/kilianp07/ldarsim/infra/monitoring"
	"github.com/kilianp07/ldarsim/infra/results"
	"github.com/kilianp07/ldarsim/infra/weather"
	"github.com/kilianp07/ldarsim/internal/eventbus"
	"github.com/kilianp07/ldarsim/pkg/report"
)

// Service wires the inputs, the sinks and the Monte-Carlo driver of a batch.
type Service struct {
	cfg      *config.Config
	runID    string
	log      logger.Logger
	start    time.Time
	registry *sim.Registry
	grids    map[string]map[string]sim.DeploymentGrid // program -> method -> grid
	daylight sim.DaylightProvider
	offsite  []float64
	vents    []float64
	flags    flags.Sink
	metrics  coremetrics.MetricsSink
	results  *results.SQLiteStore
	now      func() time.Time
}

// Outcome summarises a finished batch.
type Outcome struct {
	RunID    string
	Outcomes []montecarlo.Outcome
	Failed   int
	Files    []string
}

// Inputs is the validated input data of a batch.
type Inputs struct {
	Registry *sim.Registry
	Grids    map[string]map[string]sim.DeploymentGrid
	Daylight sim.DaylightProvider
	Offsite  []float64
	Vents    []float64
}

// LoadInputs reads and validates every input table. Data errors surface here,
// before any replicate starts.
func LoadInputs(cfg *config.Config) (*Inputs, error) {
	methods := cfg.MethodNames()
	sites, err := input.LoadSitesFile(cfg.Inputs.Sites, methods)
	if err != nil {
		return nil, err
	}
	leaks, err := input.LoadLeaksFile(cfg.Inputs.Leaks)
	if err != nil {
		return nil, err
	}
	reg, err := sim.NewRegistry(sites, leaks)
	if err != nil {
		return nil, err
	}
	in := &Inputs{Registry: reg, Grids: make(map[string]map[string]sim.DeploymentGrid, len(cfg.Programs))}
	if in.Offsite, err = input.LoadSamplesFile(cfg.Inputs.OffsiteTimes); err != nil {
		return nil, err
	}
	if in.Vents, err = input.LoadSamplesFile(cfg.Inputs.Vents); err != nil {
		return nil, err
	}

	steps := cfg.Simulation.Timesteps
	var tbl *weather.Table
	if cfg.Inputs.Weather != "" {
		if tbl, err = input.LoadWeatherFile(cfg.Inputs.Weather); err != nil {
			return nil, err
		}
	}
	nLon, nLat := 0, 0
	for _, s := range sites {
		nLon = max(nLon, s.LonIndex+1)
		nLat = max(nLat, s.LatIndex+1)
	}
	for _, p := range cfg.Programs {
		if tbl != nil {
			in.Grids[p.Name] = tbl.Grids(p.Methods, steps)
		} else {
			in.Grids[p.Name] = weather.UniformGrids(p.Methods, nLon, nLat, steps)
		}
	}

	if h := cfg.Simulation.DaylightHours; h > 0 {
		in.Daylight = sim.ConstantDaylight(h)
	} else {
		a, err := weather.NewAstronomical(cfg.Simulation.Latitude)
		if err != nil {
			return nil, err
		}
		in.Daylight = a
	}

	start, err := cfg.Simulation.Start()
	if err != nil {
		return nil, err
	}
	for _, p := range cfg.Programs {
		probe := newContext(in, cfg, p, start, 0)
		if err := probe.Validate(p.Methods); err != nil {
			return nil, fmt.Errorf("program %s: %w", p.Name, err)
		}
	}
	return in, nil
}

// newContext builds the isolated state of one replicate: its own copy of
// sites and leaks, clock, time series and random source. Grids and samples
// are read-only and shared.
func newContext(in *Inputs, cfg *config.Config, p config.ProgramConfig, start time.Time, seed uint64) *sim.SimulationContext {
	names := make([]string, len(p.Methods))
	for i, m := range p.Methods {
		names[i] = m.Name
	}
	steps := cfg.Simulation.Timesteps
	return &sim.SimulationContext{
		Registry:        in.Registry.Clone(),
		Clock:           sim.NewClock(start, steps),
		Grids:           in.Grids[p.Name],
		Daylight:        in.Daylight,
		Series:          sim.NewTimeSeries(steps, names),
		Sampler:         sim.NewSeededSampler(seed, in.Offsite, in.Vents),
		ConsiderVenting: cfg.Simulation.ConsiderVenting,
	}
}

// New loads the inputs and creates the configured sinks.
func New(cfg *config.Config) (*Service, error) {
	s := &Service{cfg: cfg, runID: uuid.NewString(), now: time.Now}
	s.log = s.logger("service").With(map[string]any{"run_id": s.runID})

	mon, err := inframon.NewSentryMonitor(cfg.Sentry, s.runID)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	in, err := LoadInputs(cfg)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	s.registry, s.grids, s.daylight, s.offsite, s.vents = in.Registry, in.Grids, in.Daylight, in.Offsite, in.Vents
	s.start, _ = cfg.Simulation.Start()
	s.log.Infof("loaded %d sites and %d leaks", len(s.registry.Sites()), len(s.registry.Leaks()))

	if s.flags, err = flags.NewSink(cfg.Flags.Sinks); err != nil {
		return nil, fmt.Errorf("flag sinks: %w", err)
	}
	if s.metrics, err = coremetrics.NewMetricsSink(cfg.Metrics.Sinks); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}
	if cfg.Results.Path != "-" {
		if s.results, err = results.NewSQLiteStore(cfg.Results.Path); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// RunID identifies the batch in logs, flags, metrics and stored results.
func (s *Service) RunID() string { return s.runID }

func (s *Service) logger(component string) logger.Logger {
	return logger.NewWithOptions(component, logger.Options{Level: s.cfg.Logging.Level, Format: s.cfg.Logging.Format})
}

// Tasks returns one task per program and Monte-Carlo index, programs in
// configuration order.
func (s *Service) Tasks() []montecarlo.Task {
	var tasks []montecarlo.Task
	for _, p := range s.cfg.Programs {
		for i := 0; i < s.cfg.Simulation.NSimulations; i++ {
			tasks = append(tasks, montecarlo.Task{Program: p.Name, Index: i, Run: s.replicate(p, i)})
		}
	}
	return tasks
}

func (s *Service) replicate(p config.ProgramConfig, idx int) montecarlo.RunFunc {
	in := &Inputs{Registry: s.registry, Grids: s.grids, Daylight: s.daylight, Offsite: s.offsite, Vents: s.vents}
	return func(ctx context.Context, seed uint64) (*program.Result, error) {
		runner, err := program.NewRunner(program.Options{
			RunID:     s.runID,
			Program:   p.Name,
			Replicate: idx,
			Seed:      seed,
			Methods:   p.Methods,
			Context:   newContext(in, s.cfg, p, s.start, seed),
			Flags:     s.flags,
			Metrics:   s.metrics,
			Log:       s.logger("program").With(map[string]any{"program": p.Name, "replicate": idx, "seed": seed}),
		})
		if err != nil {
			return nil, err
		}
		return runner.Run(ctx)
	}
}

// Run executes the batch, stores the replicate outcomes and writes the
// report. Failed replicates are reported, not returned as an error.
func (s *Service) Run(ctx context.Context) (*Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if addr := s.cfg.Metrics.Address; addr != "" {
		go func() {
			if err := inframetrics.StartPromServer(ctx, addr, prometheus.DefaultGatherer); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	bus := eventbus.New[events.ReplicateEvent]()
	var collected <-chan struct{}
	if rec, ok := s.metrics.(coremetrics.ReplicateRecorder); ok {
		collected = inframetrics.StartEventCollector(ctx, bus, rec)
	}

	driver := montecarlo.NewDriver(montecarlo.Config{
		Workers:  s.cfg.Simulation.NProcesses,
		BaseSeed: s.cfg.Simulation.Seed,
		Timeout:  s.cfg.Simulation.ReplicateTimeout,
	}, bus, coremon.Current(), s.logger("montecarlo").With(map[string]any{"run_id": s.runID}))

	outcomes := driver.Run(ctx, s.Tasks())
	bus.Close()
	if collected != nil {
		<-collected
	}
	if n := bus.Dropped(); n > 0 {
		s.log.Warnf("%d replicate events dropped by slow subscribers", n)
	}

	out := &Outcome{RunID: s.runID, Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Failed() {
			out.Failed++
		}
	}

	var errs []error
	at := s.now()
	if s.results != nil {
		if err := s.results.SaveOutcomes(s.runID, outcomes, at); err != nil {
			errs = append(errs, fmt.Errorf("store results: %w", err))
		}
	}
	files, err := report.Write(s.cfg.Simulation.OutputDir, report.Batch{
		RunID:       s.runID,
		Programs:    s.cfg.ProgramNames(),
		Outcomes:    outcomes,
		BaseSeed:    s.cfg.Simulation.Seed,
		Parameters:  parameters(s.cfg),
		GeneratedAt: at,
	})
	out.Files = files
	if err != nil {
		errs = append(errs, err)
	}
	s.log.Infof("batch finished: %d replicates, %d failed, %d report files", len(outcomes), out.Failed, len(files))
	return out, errors.Join(errs...)
}

// parameters is the part of the configuration recorded in the metadata.
// Sink settings are left out since they may carry credentials.
func parameters(cfg *config.Config) any {
	return struct {
		Simulation config.SimulationConfig `json:"simulation"`
		Inputs     config.InputsConfig     `json:"inputs"`
		Programs   []config.ProgramConfig  `json:"programs"`
	}{cfg.Simulation, cfg.Inputs, cfg.Programs}
}

// Close flushes and releases every sink.
func (s *Service) Close() error {
	var errs []error
	if c, ok := s.flags.(flags.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := s.metrics.(coremetrics.Closer); ok {
		errs = append(errs, c.Close())
	}
	if s.results != nil {
		errs = append(errs, s.results.Close())
	}
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
