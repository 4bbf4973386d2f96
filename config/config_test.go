package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `simulation:
  start_date: "2020-01-01"
  timesteps: 730
  n_simulations: 4
  n_processes: 2
  seed: 42
  replicate_timeout: 30s
  consider_venting: true
  latitude: 51
inputs:
  sites: sites.csv
  leaks: /data/leaks.csv
  weather: weather.csv
programs:
  - name: P_OGI
    methods:
      - name: OGI
        n_crews: 2
        max_workday: 10
        consider_daylight: true
        min_temp: -30
        max_wind: 10
        max_precip: 1
        min_interval: 30
        MDL: 0.01
        QE: 0.2
        follow_up_thresh: 0.1
        cost_per_day: 1500
  - name: P_air
    methods:
      - name: aircraft
        n_crews: 1
        max_workday: 8
        MDL: 1
        follow_up_thresh: 1
flags:
  sinks:
    - type: jsonl
      conf:
        path: flags.jsonl
metrics:
  address: ":9100"
  sinks:
    - type: prometheus
logging:
  level: debug
`

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", sample)
	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	assert.Equal(t, 730, cfg.Simulation.Timesteps)
	assert.Equal(t, 4, cfg.Simulation.NSimulations)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 30*time.Second, cfg.Simulation.ReplicateTimeout)
	assert.True(t, cfg.Simulation.ConsiderVenting)
	start, err := cfg.Simulation.Start()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), start)

	assert.Equal(t, filepath.Join(dir, "sites.csv"), cfg.Inputs.Sites)
	assert.Equal(t, "/data/leaks.csv", cfg.Inputs.Leaks)
	assert.Empty(t, cfg.Inputs.Vents)

	require.Len(t, cfg.Programs, 2)
	ogi := cfg.Programs[0].Methods[0]
	assert.Equal(t, "OGI", ogi.Name)
	assert.Equal(t, 2, ogi.NCrews)
	assert.Equal(t, 0.01, ogi.MDL)
	assert.Equal(t, 0.2, ogi.QE)
	assert.True(t, ogi.ConsiderDaylight)
	assert.Equal(t, []string{"P_OGI", "P_air"}, cfg.ProgramNames())
	assert.Equal(t, []string{"OGI", "aircraft"}, cfg.MethodNames())

	require.Len(t, cfg.Flags.Sinks, 1)
	assert.Equal(t, "jsonl", cfg.Flags.Sinks[0].Type)
	assert.Equal(t, "flags.jsonl", cfg.Flags.Sinks[0].Conf["path"])
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.Equal(t, "prometheus", cfg.Metrics.Sinks[0].Type)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, filepath.Join("output", "results.db"), cfg.Results.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", sample)
	t.Setenv("LDAR_SIMULATION__N_PROCESSES", "8")
	t.Setenv("LDAR_SIMULATION__OUTPUT_DIR", "/tmp/out")
	t.Setenv("LDAR_SENTRY__DSN", "https://key@example.com/1")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Simulation.NProcesses)
	assert.Equal(t, "/tmp/out", cfg.Simulation.OutputDir)
	assert.Equal(t, "/tmp/out/results.db", cfg.Results.Path)
	assert.Equal(t, "https://key@example.com/1", cfg.Sentry.DSN)
}

func TestLoadJSON(t *testing.T) {
	data := `{"simulation":{"start_date":"2021-06-01"},"inputs":{"sites":"s.csv","leaks":"l.csv"},
"programs":[{"name":"P","methods":[{"name":"OGI","n_crews":1,"max_workday":8,"MDL":0.1,"follow_up_thresh":0.1}]}]}`
	cfg, err := Load(writeConfig(t, "config.json", data))
	require.NoError(t, err)
	assert.Equal(t, 365, cfg.Simulation.Timesteps)
	assert.Equal(t, 1, cfg.Simulation.NSimulations)
	assert.Equal(t, "output", cfg.Simulation.OutputDir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(writeConfig(t, "config.toml", ""))
	assert.ErrorContains(t, err, "unsupported")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load(writeConfig(t, "config.yaml", sample))
		require.NoError(t, err)
		return *cfg
	}
	cases := map[string]struct {
		mutate func(*Config)
		want   string
	}{
		"bad date":         {func(c *Config) { c.Simulation.StartDate = "01/01/2020" }, "start_date"},
		"no programs":      {func(c *Config) { c.Programs = nil }, "at least one program"},
		"duplicate":        {func(c *Config) { c.Programs[1].Name = "P_OGI" }, "duplicate program"},
		"no methods":       {func(c *Config) { c.Programs[1].Methods = nil }, "at least one method"},
		"method invalid":   {func(c *Config) { c.Programs[0].Methods[0].MDL = 0 }, "MDL"},
		"missing sites":    {func(c *Config) { c.Inputs.Sites = "" }, "sites is required"},
		"bad level":        {func(c *Config) { c.Logging.Level = "loud" }, "logging"},
		"bad latitude":     {func(c *Config) { c.Simulation.Latitude = 120 }, "latitude"},
		"negative workers": {func(c *Config) { c.Simulation.NProcesses = -1 }, "n_processes"},
		"sink type":        {func(c *Config) { c.Flags.Sinks[0].Type = "" }, "sink type"},
		"sentry rate":      {func(c *Config) { c.Sentry.SampleRate = 2 }, "sample_rate"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tc.want)
		})
	}

	cfg := base()
	cfg.Simulation.Latitude = 120
	cfg.Simulation.DaylightHours = 10
	assert.NoError(t, cfg.Validate())
}
