package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/kilianp07/ldarsim/core/montecarlo"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func writeRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummaryCSV writes one row per program and metric.
func WriteSummaryCSV(w io.Writer, summaries []ProgramSummary) error {
	var rows [][]string
	for _, ps := range summaries {
		for _, m := range Metrics {
			s := ps.Metrics[m]
			row := []string{ps.Program, m, strconv.Itoa(ps.Completed), strconv.Itoa(ps.Failed)}
			if s.N == 0 {
				row = append(row, "", "", "", "")
			} else {
				row = append(row, formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min), formatFloat(s.Max))
			}
			rows = append(rows, row)
		}
	}
	return writeRows(w, []string{"program", "metric", "completed", "failed", "mean", "std", "min", "max"}, rows)
}

// WriteComparisonCSV compares the mean of every metric against the first
// program, the reference. The ratio is empty when the reference mean is zero
// and the difference is empty when either side has no completed replicate.
func WriteComparisonCSV(w io.Writer, summaries []ProgramSummary) error {
	if len(summaries) == 0 {
		return writeRows(w, comparisonHeader, nil)
	}
	ref := summaries[0]
	var rows [][]string
	for _, ps := range summaries {
		for _, m := range Metrics {
			s, r := ps.Metrics[m], ref.Metrics[m]
			row := []string{ps.Program, ref.Program, m, "", "", "", ""}
			if s.N > 0 {
				row[3] = formatFloat(s.Mean)
			}
			if r.N > 0 {
				row[4] = formatFloat(r.Mean)
			}
			if s.N > 0 && r.N > 0 {
				row[5] = formatFloat(s.Mean - r.Mean)
				if r.Mean != 0 {
					row[6] = formatFloat(s.Mean / r.Mean)
				}
			}
			rows = append(rows, row)
		}
	}
	return writeRows(w, comparisonHeader, rows)
}

var comparisonHeader = []string{"program", "reference", "metric", "mean", "reference_mean", "difference", "ratio"}

// WriteStatusCSV lists every replicate with its status and, for failures,
// the error.
func WriteStatusCSV(w io.Writer, outcomes []montecarlo.Outcome) error {
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		status, msg := "completed", ""
		if o.Failed() {
			status, msg = "failed", o.Err.Error()
		}
		rows = append(rows, []string{
			o.ID, o.Program, strconv.Itoa(o.Index), strconv.FormatUint(o.Seed, 10),
			status, formatFloat(o.Duration.Round(time.Millisecond).Seconds()), msg,
		})
	}
	return writeRows(w, []string{"id", "program", "replicate", "seed", "status", "duration_s", "error"}, rows)
}

// WriteSensitivityCSV writes one row per completed replicate of a program
// with its seed, totals and per-method cost and visits.
func WriteSensitivityCSV(w io.Writer, ps ProgramSummary) error {
	methodSet := map[string]struct{}{}
	for _, r := range ps.Results {
		for m := range r.Totals.MethodCost {
			methodSet[m] = struct{}{}
		}
		for m := range r.Totals.MethodVisits {
			methodSet[m] = struct{}{}
		}
	}
	methods := make([]string, 0, len(methodSet))
	for m := range methodSet {
		methods = append(methods, m)
	}
	sort.Strings(methods)

	header := append([]string{"replicate", "seed"}, Metrics...)
	for _, m := range methods {
		header = append(header, fmt.Sprintf("%s_cost", m), fmt.Sprintf("%s_visits", m))
	}
	results := byReplicate(ps.Results)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		row := []string{strconv.Itoa(r.Replicate), strconv.FormatUint(r.Seed, 10)}
		for _, m := range Metrics {
			row = append(row, formatFloat(metricValue(r, m)))
		}
		for _, m := range methods {
			row = append(row, formatFloat(r.Totals.MethodCost[m]), strconv.Itoa(r.Totals.MethodVisits[m]))
		}
		rows = append(rows, row)
	}
	return writeRows(w, header, rows)
}
