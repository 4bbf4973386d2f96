package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/ldarsim/core/program"
)

// SeriesMeans averages the daily counters of several replicates. Replicates
// shorter than the first are ignored.
type SeriesMeans struct {
	Dates          []string
	ActiveLeaks    []float64
	EmissionsKg    []float64
	DailyCost      []float64
	CandidateFlags []float64
}

// MeanSeries computes SeriesMeans over results.
func MeanSeries(results []*program.Result) SeriesMeans {
	var m SeriesMeans
	if len(results) == 0 || results[0].Series == nil {
		return m
	}
	n := results[0].Series.Len()
	m.Dates = make([]string, n)
	for i, d := range results[0].Series.Dates {
		m.Dates[i] = d.Format(dateLayout)
	}
	m.ActiveLeaks = make([]float64, n)
	m.EmissionsKg = make([]float64, n)
	m.DailyCost = make([]float64, n)
	m.CandidateFlags = make([]float64, n)
	count := 0
	for _, r := range results {
		s := r.Series
		if s == nil || s.Len() < n {
			continue
		}
		count++
		for t := 0; t < n; t++ {
			m.ActiveLeaks[t] += float64(s.ActiveLeaks[t])
			m.EmissionsKg[t] += s.DailyEmissions[t]
			m.DailyCost[t] += s.TotalDailyCost[t]
			m.CandidateFlags[t] += float64(s.CandidateFlags[t])
		}
	}
	for _, xs := range [][]float64{m.ActiveLeaks, m.EmissionsKg, m.DailyCost, m.CandidateFlags} {
		for t := range xs {
			xs[t] /= float64(count)
		}
	}
	return m
}

func lineData(xs []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i, v := range xs {
		out[i] = opts.LineData{Value: v}
	}
	return out
}

// RenderTimeSeriesChart writes an HTML line chart of the mean daily counters
// of a program.
func RenderTimeSeriesChart(w io.Writer, programName string, results []*program.Result) error {
	m := MeanSeries(results)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    programName,
			Subtitle: fmt.Sprintf("mean over %d replicates", len(results)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Top: "bottom"}),
	)
	line.SetXAxis(m.Dates).
		AddSeries("Active leaks", lineData(m.ActiveLeaks)).
		AddSeries("Emissions (kg/day)", lineData(m.EmissionsKg)).
		AddSeries("Cost", lineData(m.DailyCost)).
		AddSeries("Candidate flags", lineData(m.CandidateFlags))
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
