package report

import (
	"io"
	"slices"
	"sort"
	"strconv"

	"github.com/kilianp07/ldarsim/core/program"
)

const dateLayout = "2006-01-02"

// byReplicate returns the results of a program ordered by replicate index.
func byReplicate(results []*program.Result) []*program.Result {
	out := slices.Clone(results)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Replicate < out[j].Replicate })
	return out
}

// seriesMethods returns the sorted method names present in any series.
func seriesMethods(results []*program.Result) []string {
	set := map[string]struct{}{}
	for _, r := range results {
		if r.Series == nil {
			continue
		}
		for m := range r.Series.SitesVisited {
			set[m] = struct{}{}
		}
	}
	methods := make([]string, 0, len(set))
	for m := range set {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

var sitesHeader = []string{
	"replicate", "seed", "facility_ID", "method", "required_surveys",
	"surveys_done_this_year", "surveys_conducted", "time_since_last_survey", "missed_leaks",
}

// WriteSitesCSV writes the end state of every site and method, one row per
// completed replicate and site, in registry order.
func WriteSitesCSV(w io.Writer, ps ProgramSummary) error {
	var rows [][]string
	for _, r := range byReplicate(ps.Results) {
		rep, seed := strconv.Itoa(r.Replicate), strconv.FormatUint(r.Seed, 10)
		for _, s := range r.Sites {
			rows = append(rows, []string{
				rep, seed, s.FacilityID, s.Method,
				strconv.Itoa(s.RequiredSurveys),
				strconv.Itoa(s.SurveysDoneThisYear),
				strconv.Itoa(s.SurveysConducted),
				strconv.Itoa(s.TimeSinceLastSurvey),
				strconv.Itoa(s.MissedLeaks),
			})
		}
	}
	return writeRows(w, sitesHeader, rows)
}

// WriteTimeSeriesCSV writes the daily counters of every completed replicate,
// one row per replicate and timestep, with per-method visits, cost and
// missed leaks.
func WriteTimeSeriesCSV(w io.Writer, ps ProgramSummary) error {
	methods := seriesMethods(ps.Results)
	header := []string{"replicate", "seed", "timestep", "date", "active_leaks",
		"emissions_kg", "candidate_flags", "total_daily_cost"}
	for _, m := range methods {
		header = append(header, m+"_sites_visited", m+"_cost", m+"_missed_leaks")
	}

	var rows [][]string
	for _, r := range byReplicate(ps.Results) {
		ts := r.Series
		if ts == nil {
			continue
		}
		rep, seed := strconv.Itoa(r.Replicate), strconv.FormatUint(r.Seed, 10)
		for t := 0; t < ts.Len(); t++ {
			date := ""
			if !ts.Dates[t].IsZero() {
				date = ts.Dates[t].Format(dateLayout)
			}
			row := []string{
				rep, seed, strconv.Itoa(t), date,
				strconv.Itoa(ts.ActiveLeaks[t]),
				formatFloat(ts.DailyEmissions[t]),
				strconv.Itoa(ts.CandidateFlags[t]),
				formatFloat(ts.TotalDailyCost[t]),
			}
			for _, m := range methods {
				row = append(row,
					strconv.Itoa(at(ts.SitesVisited[m], t)),
					formatFloat(at(ts.MethodCost[m], t)),
					strconv.Itoa(at(ts.MissedLeaks[m], t)),
				)
			}
			rows = append(rows, row)
		}
	}
	return writeRows(w, header, rows)
}

// at returns xs[i], or the zero value when the method is absent from a
// replicate's series.
func at[T int | float64](xs []T, i int) T {
	if i < len(xs) {
		return xs[i]
	}
	var zero T
	return zero
}
