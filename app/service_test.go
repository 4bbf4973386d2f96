package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/config"
	"github.com/kilianp07/ldarsim/core/factory"
	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/infra/results"
	"github.com/kilianp07/ldarsim/pkg/report"
)

func writeFile(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	ogi := model.MethodConfig{
		Name: "OGI", NCrews: 1, MaxWorkday: 8, MinTemp: -30, MaxWind: 10, MaxPrecip: 1,
		MDL: 0.01, FollowUpThresh: 0.1, CostPerDay: 100,
	}
	cfg := &config.Config{
		Simulation: config.SimulationConfig{
			StartDate: "2020-01-01", Timesteps: 10, NSimulations: 3, NProcesses: 2, Seed: 7,
			OutputDir: filepath.Join(dir, "out"), DaylightHours: 12,
		},
		Inputs: config.InputsConfig{
			Sites:        writeFile(t, dir, "sites.csv", "facility_ID,lon_index,lat_index,OGI_RS,OGI_time\nF1,0,0,12,60\nF2,1,0,12,60\n"),
			Leaks:        writeFile(t, dir, "leaks.csv", "leak_ID,facility_ID,rate\nL1,F1,1.0\nL2,F2,0.001\n"),
			OffsiteTimes: writeFile(t, dir, "offsite.csv", "minutes\n30\n45\n"),
		},
		Programs: []config.ProgramConfig{{Name: "P_OGI", Methods: []model.MethodConfig{ogi}}},
		Flags: config.FlagsConfig{Sinks: []factory.ModuleConfig{
			{Type: "jsonl", Conf: map[string]any{"path": filepath.Join(dir, "flags.jsonl")}},
		}},
		Results: config.ResultsConfig{Path: filepath.Join(dir, "results.db")},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestServiceRun(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg)
	require.NoError(t, err)

	out, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	assert.Equal(t, svc.RunID(), out.RunID)
	require.Len(t, out.Outcomes, 3)
	assert.Zero(t, out.Failed)
	for _, o := range out.Outcomes {
		require.NotNil(t, o.Result)
		assert.Positive(t, o.Result.Totals.SitesVisited)
		assert.Positive(t, o.Result.Totals.CandidateFlags)
	}
	for _, name := range []string{report.SummaryFile, report.ComparisonFile, report.StatusFile, report.MetadataFile,
		report.SensitivityFile("P_OGI"), report.ChartFile("P_OGI"), report.SitesFile("P_OGI"), report.TimeSeriesFile("P_OGI")} {
		assert.FileExists(t, filepath.Join(cfg.Simulation.OutputDir, name))
	}

	info, err := os.Stat(cfg.Flags.Sinks[0].Conf["path"].(string))
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	store, err := results.NewSQLiteStore(cfg.Results.Path)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	recs, err := store.Query(out.RunID)
	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestServiceReproducible(t *testing.T) {
	run := func() []float64 {
		cfg := testConfig(t)
		cfg.Simulation.NProcesses = 1
		cfg.Results.Path = "-"
		svc, err := New(cfg)
		require.NoError(t, err)
		defer func() { _ = svc.Close() }()
		out, err := svc.Run(context.Background())
		require.NoError(t, err)
		var costs []float64
		for _, o := range out.Outcomes {
			costs = append(costs, o.Result.Totals.TotalCost, float64(o.Result.Totals.SitesVisited))
		}
		return costs
	}
	assert.Equal(t, run(), run())
}

func TestLoadInputsErrors(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Inputs.Sites)

	cfg.Inputs.Leaks = writeFile(t, dir, "orphan.csv", "leak_ID,facility_ID,rate\nL9,F9,1\n")
	_, err := LoadInputs(cfg)
	assert.True(t, errors.Is(err, model.ErrUnknownFacility))

	cfg = testConfig(t)
	dir = filepath.Dir(cfg.Inputs.Sites)
	cfg.Inputs.Weather = writeFile(t, dir, "weather.csv", "lon_index,lat_index,timestep,temp,wind,precip\n0,0,0,10,1,0\n")
	_, err = LoadInputs(cfg)
	assert.True(t, errors.Is(err, model.ErrLocationOutOfGrid))

	cfg = testConfig(t)
	dir = filepath.Dir(cfg.Inputs.Sites)
	cfg.Inputs.Sites = writeFile(t, dir, "dup.csv", "facility_ID,lon_index,lat_index,OGI_RS,OGI_time\nF1,0,0,1,60\nF1,0,0,1,60\n")
	_, err = LoadInputs(cfg)
	assert.True(t, errors.Is(err, model.ErrDuplicateSite))
}

func TestLoadInputsWeather(t *testing.T) {
	cfg := testConfig(t)
	dir := filepath.Dir(cfg.Inputs.Sites)
	cfg.Inputs.Weather = writeFile(t, dir, "weather.csv",
		"lon_index,lat_index,timestep,temp,wind,precip\n0,0,0,10,1,0\n1,0,0,10,20,0\n0,0,1,10,1,0\n1,0,1,10,1,0\n")
	in, err := LoadInputs(cfg)
	require.NoError(t, err)
	g := in.Grids["P_OGI"]["OGI"]
	assert.True(t, g.Eligible(0, 0, 0))
	assert.False(t, g.Eligible(1, 0, 0))
	assert.True(t, g.Eligible(1, 0, 9))
	assert.Equal(t, []float64{30, 45}, in.Offsite)
}
