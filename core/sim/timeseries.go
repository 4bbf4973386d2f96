package sim

import "time"

// TimeSeries accumulates per-timestep counters. Every crew acting on a day
// adds to the same index.
type TimeSeries struct {
	Dates          []time.Time
	SitesVisited   map[string][]int
	MethodCost     map[string][]float64
	MissedLeaks    map[string][]int
	TotalDailyCost []float64
	CandidateFlags []int
	ActiveLeaks    []int
	DailyEmissions []float64 // kg/day
}

// NewTimeSeries allocates n timesteps for the given methods.
func NewTimeSeries(n int, methods []string) *TimeSeries {
	ts := &TimeSeries{
		Dates:          make([]time.Time, n),
		SitesVisited:   make(map[string][]int, len(methods)),
		MethodCost:     make(map[string][]float64, len(methods)),
		MissedLeaks:    make(map[string][]int, len(methods)),
		TotalDailyCost: make([]float64, n),
		CandidateFlags: make([]int, n),
		ActiveLeaks:    make([]int, n),
		DailyEmissions: make([]float64, n),
	}
	for _, m := range methods {
		ts.SitesVisited[m] = make([]int, n)
		ts.MethodCost[m] = make([]float64, n)
		ts.MissedLeaks[m] = make([]int, n)
	}
	return ts
}

// Len returns the number of timesteps.
func (ts *TimeSeries) Len() int { return len(ts.TotalDailyCost) }

func (ts *TimeSeries) valid(t int) bool { return t >= 0 && t < ts.Len() }

// AddSiteVisit counts one visit by method at timestep t.
func (ts *TimeSeries) AddSiteVisit(method string, t int) {
	if s, ok := ts.SitesVisited[method]; ok && ts.valid(t) {
		s[t]++
	}
}

// AddCost accrues a daily operating cost for method and for the total.
func (ts *TimeSeries) AddCost(method string, t int, cost float64) {
	if !ts.valid(t) {
		return
	}
	if s, ok := ts.MethodCost[method]; ok {
		s[t] += cost
	}
	ts.TotalDailyCost[t] += cost
}

// AddMissedLeaks counts leaks present during undetected visits.
func (ts *TimeSeries) AddMissedLeaks(method string, t, n int) {
	if s, ok := ts.MissedLeaks[method]; ok && ts.valid(t) {
		s[t] += n
	}
}

// Totals is the aggregate of a time series over the whole run.
type Totals struct {
	TotalCost      float64
	SitesVisited   int
	MissedLeaks    int
	CandidateFlags int
	EmissionsKg    float64
	MethodCost     map[string]float64
	MethodVisits   map[string]int
}

// Totals sums every counter.
func (ts *TimeSeries) Totals() Totals {
	tot := Totals{MethodCost: map[string]float64{}, MethodVisits: map[string]int{}}
	for t := 0; t < ts.Len(); t++ {
		tot.TotalCost += ts.TotalDailyCost[t]
		tot.CandidateFlags += ts.CandidateFlags[t]
		tot.EmissionsKg += ts.DailyEmissions[t]
	}
	for m, s := range ts.SitesVisited {
		for _, v := range s {
			tot.SitesVisited += v
			tot.MethodVisits[m] += v
		}
	}
	for m, s := range ts.MethodCost {
		for _, v := range s {
			tot.MethodCost[m] += v
		}
	}
	for _, s := range ts.MissedLeaks {
		for _, v := range s {
			tot.MissedLeaks += v
		}
	}
	return tot
}
