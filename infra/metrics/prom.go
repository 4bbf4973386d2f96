package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/ldarsim/core/events"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
)

// PromSink records simulation progress in Prometheus metrics.
type PromSink struct {
	visits      *prometheus.CounterVec
	missed      *prometheus.CounterVec
	cost        *prometheus.CounterVec
	flags       *prometheus.CounterVec
	activeLeaks *prometheus.GaugeVec
	replicates  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewPromSink registers simulation metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by a previous sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	if s.visits, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldarsim_site_visits_total",
		Help: "Site visits completed by crews",
	}, []string{"program", "method"})); err != nil {
		return nil, err
	}
	if s.missed, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldarsim_missed_leaks_total",
		Help: "Site visits whose emissions were at or below the detection limit",
	}, []string{"program", "method"})); err != nil {
		return nil, err
	}
	if s.cost, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldarsim_survey_cost_total",
		Help: "Accrued crew day cost",
	}, []string{"program", "method"})); err != nil {
		return nil, err
	}
	if s.flags, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldarsim_candidate_flags_total",
		Help: "Candidate flags raised for follow-up",
	}, []string{"program"})); err != nil {
		return nil, err
	}
	if s.activeLeaks, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ldarsim_active_leaks",
		Help: "Active leaks on the last recorded day",
	}, []string{"program"})); err != nil {
		return nil, err
	}
	if s.replicates, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ldarsim_replicates_total",
		Help: "Replicate lifecycle transitions",
	}, []string{"program", "stage"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ldarsim_replicate_duration_seconds",
		Help:    "Wall time of completed replicates",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	}, []string{"program"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// RecordTimestep adds the day's activity to the counters.
func (s *PromSink) RecordTimestep(rec coremetrics.TimestepRecord) error {
	for m, n := range rec.SitesVisited {
		s.visits.WithLabelValues(rec.Program, m).Add(float64(n))
	}
	for m, n := range rec.MissedLeaks {
		s.missed.WithLabelValues(rec.Program, m).Add(float64(n))
	}
	for m, c := range rec.MethodCost {
		if c > 0 {
			s.cost.WithLabelValues(rec.Program, m).Add(c)
		}
	}
	s.flags.WithLabelValues(rec.Program).Add(float64(rec.CandidateFlags))
	s.activeLeaks.WithLabelValues(rec.Program).Set(float64(rec.ActiveLeaks))
	return nil
}

// RecordReplicate counts lifecycle transitions and observes durations of
// finished replicates.
func (s *PromSink) RecordReplicate(ev events.ReplicateEvent) error {
	s.replicates.WithLabelValues(ev.Program, string(ev.Stage)).Inc()
	if ev.Stage == events.ReplicateFinished {
		s.duration.WithLabelValues(ev.Program).Observe(ev.Duration.Seconds())
	}
	return nil
}
