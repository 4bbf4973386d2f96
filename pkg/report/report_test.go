package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/core/montecarlo"
	"github.com/kilianp07/ldarsim/core/program"
	"github.com/kilianp07/ldarsim/core/sim"
)

func result(prog string, idx int, cost float64, visits int) *program.Result {
	ts := sim.NewTimeSeries(2, []string{"OGI"})
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.Dates[0], ts.Dates[1] = start, start.AddDate(0, 0, 1)
	ts.ActiveLeaks[0], ts.ActiveLeaks[1] = 4, 2
	ts.AddCost("OGI", 0, cost)
	ts.SitesVisited["OGI"][0] = visits
	return &program.Result{Program: prog, Replicate: idx, Seed: uint64(100 + idx), Series: ts, Totals: ts.Totals()}
}

func batch() []montecarlo.Outcome {
	return []montecarlo.Outcome{
		{ID: "P_ref#0", Program: "P_ref", Index: 0, Seed: 100, Result: result("P_ref", 0, 100, 2)},
		{ID: "P_ref#1", Program: "P_ref", Index: 1, Seed: 101, Result: result("P_ref", 1, 300, 4)},
		{ID: "P_alt#0", Program: "P_alt", Index: 0, Seed: 200, Result: result("P_alt", 0, 400, 6)},
		{ID: "P_alt#1", Program: "P_alt", Index: 1, Seed: 201, Err: errors.New("replicate timed out")},
	}
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestDescribe(t *testing.T) {
	s := Describe([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5, s.Mean, 1e-9)
	assert.InDelta(t, 2.138, s.Std, 1e-3)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)

	one := Describe([]float64{3})
	assert.Equal(t, Stats{N: 1, Mean: 3, Min: 3, Max: 3}, one)
	assert.Equal(t, Stats{}, Describe(nil))
}

func TestSummarize(t *testing.T) {
	sums := Summarize([]string{"P_ref", "P_alt", "P_none"}, batch())
	require.Len(t, sums, 3)
	assert.Equal(t, "P_ref", sums[0].Program)
	assert.Equal(t, 2, sums[0].Completed)
	assert.Equal(t, 200.0, sums[0].Metrics[MetricTotalCost].Mean)
	assert.Equal(t, 3.0, sums[0].Metrics[MetricSitesVisited].Mean)
	assert.Equal(t, 1, sums[1].Completed)
	assert.Equal(t, 1, sums[1].Failed)
	assert.Equal(t, 0, sums[2].Metrics[MetricTotalCost].N)
}

func TestWriteSummaryAndComparison(t *testing.T) {
	sums := Summarize([]string{"P_ref", "P_alt"}, batch())

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryCSV(&buf, sums))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 1+2*len(Metrics))
	assert.Equal(t, []string{"P_ref", "total_cost", "2", "0", "200"}, rows[1][:5])
	std, err := strconv.ParseFloat(rows[1][5], 64)
	require.NoError(t, err)
	assert.InDelta(t, 141.421, std, 1e-3)
	assert.Equal(t, []string{"100", "300"}, rows[1][6:])

	buf.Reset()
	require.NoError(t, WriteComparisonCSV(&buf, sums))
	rows = readCSV(t, buf.Bytes())
	var alt []string
	for _, r := range rows {
		if r[0] == "P_alt" && r[2] == MetricTotalCost {
			alt = r
		}
	}
	assert.Equal(t, []string{"P_alt", "P_ref", "total_cost", "400", "200", "200", "2"}, alt)
}

func TestWriteStatusCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatusCSV(&buf, batch()))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 5)
	assert.Equal(t, "completed", rows[1][4])
	assert.Equal(t, []string{"P_alt#1", "P_alt", "1", "201", "failed", "0", "replicate timed out"}, rows[4])
}

func TestWriteSensitivityCSV(t *testing.T) {
	sums := Summarize([]string{"P_ref"}, batch())
	var buf bytes.Buffer
	require.NoError(t, WriteSensitivityCSV(&buf, sums[0]))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"replicate", "seed", "total_cost", "sites_visited", "missed_leaks", "candidate_flags", "emissions_kg", "OGI_cost", "OGI_visits"}, rows[0])
	assert.Equal(t, []string{"1", "101", "300", "4", "0", "0", "0", "300", "4"}, rows[2])
}

func TestMeanSeriesAndChart(t *testing.T) {
	results := []*program.Result{result("P", 0, 100, 1), result("P", 1, 300, 1)}
	m := MeanSeries(results)
	assert.Equal(t, []string{"2020-01-01", "2020-01-02"}, m.Dates)
	assert.Equal(t, []float64{4, 2}, m.ActiveLeaks)
	assert.Equal(t, []float64{200, 0}, m.DailyCost)

	var buf bytes.Buffer
	require.NoError(t, RenderTimeSeriesChart(&buf, "P", results))
	assert.Contains(t, buf.String(), "Active leaks")
	assert.Contains(t, buf.String(), "2020-01-02")
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	paths, err := Write(dir, Batch{
		RunID:       "run-1",
		Programs:    []string{"P_ref", "P_alt"},
		Outcomes:    batch(),
		BaseSeed:    42,
		Parameters:  map[string]any{"n_simulations": 2},
		GeneratedAt: at,
	})
	require.NoError(t, err)
	for _, name := range []string{SummaryFile, ComparisonFile, StatusFile, MetadataFile,
		SensitivityFile("P_ref"), ChartFile("P_ref"), SitesFile("P_ref"), TimeSeriesFile("P_ref"),
		SitesFile("P_alt"), TimeSeriesFile("P_alt")} {
		assert.Contains(t, paths, filepath.Join(dir, name))
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.Equal(t, "sensitivity_P_alt.csv", SensitivityFile("P alt"))
	assert.Equal(t, "sites_P_alt.csv", SitesFile("P alt"))
	assert.Equal(t, "timeseries_P_alt.csv", TimeSeriesFile("P alt"))

	raw, err := os.ReadFile(filepath.Join(dir, TimeSeriesFile("P_alt")))
	require.NoError(t, err)
	assert.Len(t, readCSV(t, raw), 1+2, "one row per timestep of the completed replicate")

	raw, err = os.ReadFile(filepath.Join(dir, MetadataFile))
	require.NoError(t, err)
	var meta Metadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, 4, meta.Replicates)
	assert.Equal(t, 3, meta.Completed)
	assert.Equal(t, 1, meta.Failed)
	assert.True(t, at.Equal(meta.GeneratedAt))
	assert.True(t, strings.Contains(string(raw), "n_simulations"))
}

func TestWriteSitesCSV(t *testing.T) {
	r0 := result("P", 0, 100, 1)
	r0.Sites = []program.SiteSummary{
		{FacilityID: "F1", Method: "OGI", RequiredSurveys: 3, SurveysDoneThisYear: 1, SurveysConducted: 2, TimeSinceLastSurvey: 0, MissedLeaks: 1},
		{FacilityID: "F2", Method: "OGI", RequiredSurveys: 3, TimeSinceLastSurvey: 40},
	}
	r1 := result("P", 1, 100, 1)
	r1.Sites = []program.SiteSummary{{FacilityID: "F1", Method: "OGI", RequiredSurveys: 3, SurveysConducted: 1}}
	ps := ProgramSummary{Program: "P", Results: []*program.Result{r1, r0}}

	var buf bytes.Buffer
	require.NoError(t, WriteSitesCSV(&buf, ps))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, sitesHeader, rows[0])
	assert.Equal(t, []string{"0", "100", "F1", "OGI", "3", "1", "2", "0", "1"}, rows[1])
	assert.Equal(t, []string{"0", "100", "F2", "OGI", "3", "0", "0", "40", "0"}, rows[2])
	assert.Equal(t, []string{"1", "101", "F1", "OGI", "3", "0", "1", "0", "0"}, rows[3])
}

func TestWriteTimeSeriesCSV(t *testing.T) {
	r0 := result("P", 0, 150, 2)
	r0.Series.AddMissedLeaks("OGI", 1, 3)
	r0.Series.DailyEmissions[0] = 12.5
	r0.Series.CandidateFlags[0] = 1
	r1 := result("P", 1, 50, 1)
	ps := ProgramSummary{Program: "P", Results: []*program.Result{r1, r0}}

	var buf bytes.Buffer
	require.NoError(t, WriteTimeSeriesCSV(&buf, ps))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 1+2*2)
	assert.Equal(t, []string{"replicate", "seed", "timestep", "date", "active_leaks", "emissions_kg",
		"candidate_flags", "total_daily_cost", "OGI_sites_visited", "OGI_cost", "OGI_missed_leaks"}, rows[0])
	assert.Equal(t, []string{"0", "100", "0", "2020-01-01", "4", "12.5", "1", "150", "2", "150", "0"}, rows[1])
	assert.Equal(t, []string{"0", "100", "1", "2020-01-02", "2", "0", "0", "0", "0", "0", "3"}, rows[2])
	assert.Equal(t, []string{"1", "101", "0", "2020-01-01", "4", "0", "0", "50", "1", "50", "0"}, rows[3])
}

func TestWriteTimeSeriesCSVNoResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTimeSeriesCSV(&buf, ProgramSummary{Program: "P"}))
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 1)
	assert.Equal(t, "total_daily_cost", rows[0][7])
}
