package report

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/ldarsim/core/montecarlo"
	"github.com/kilianp07/ldarsim/core/program"
)

// Stats describes one metric over the completed replicates of a program.
type Stats struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Describe computes Stats. Std is the sample standard deviation and is zero
// for fewer than two values.
func Describe(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	s := Stats{N: len(xs), Min: floats.Min(xs), Max: floats.Max(xs)}
	if len(xs) < 2 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	return s
}

// Metric names in output order.
const (
	MetricTotalCost      = "total_cost"
	MetricSitesVisited   = "sites_visited"
	MetricMissedLeaks    = "missed_leaks"
	MetricCandidateFlags = "candidate_flags"
	MetricEmissionsKg    = "emissions_kg"
)

// Metrics lists the summarised metrics.
var Metrics = []string{MetricTotalCost, MetricSitesVisited, MetricMissedLeaks, MetricCandidateFlags, MetricEmissionsKg}

func metricValue(r *program.Result, metric string) float64 {
	t := r.Totals
	switch metric {
	case MetricTotalCost:
		return t.TotalCost
	case MetricSitesVisited:
		return float64(t.SitesVisited)
	case MetricMissedLeaks:
		return float64(t.MissedLeaks)
	case MetricCandidateFlags:
		return float64(t.CandidateFlags)
	case MetricEmissionsKg:
		return t.EmissionsKg
	}
	return 0
}

// ProgramSummary aggregates the replicates of one program.
type ProgramSummary struct {
	Program   string
	Completed int
	Failed    int
	Metrics   map[string]Stats
	Results   []*program.Result
}

// Summarize groups outcomes by program. Programs are reported in the given
// order; programs not listed are appended in order of first appearance.
func Summarize(programs []string, outcomes []montecarlo.Outcome) []ProgramSummary {
	order := append([]string(nil), programs...)
	byProgram := make(map[string]*ProgramSummary, len(programs))
	for _, p := range programs {
		byProgram[p] = &ProgramSummary{Program: p}
	}
	for _, o := range outcomes {
		ps, ok := byProgram[o.Program]
		if !ok {
			ps = &ProgramSummary{Program: o.Program}
			byProgram[o.Program] = ps
			order = append(order, o.Program)
		}
		if o.Failed() || o.Result == nil {
			ps.Failed++
			continue
		}
		ps.Completed++
		ps.Results = append(ps.Results, o.Result)
	}
	out := make([]ProgramSummary, 0, len(order))
	for _, p := range order {
		ps := byProgram[p]
		ps.Metrics = make(map[string]Stats, len(Metrics))
		for _, m := range Metrics {
			xs := make([]float64, len(ps.Results))
			for i, r := range ps.Results {
				xs[i] = metricValue(r, m)
			}
			ps.Metrics[m] = Describe(xs)
		}
		out = append(out, *ps)
	}
	return out
}
