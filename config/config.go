package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ldarsim/core/factory"
	"github.com/kilianp07/ldarsim/core/metrics"
)

// EnvPrefix prefixes environment overrides, e.g. LDAR_SIMULATION__N_PROCESSES=4.
const EnvPrefix = "LDAR_"

type Config struct {
	Simulation SimulationConfig `json:"simulation"`
	Inputs     InputsConfig     `json:"inputs"`
	Programs   []ProgramConfig  `json:"programs"`
	Flags      FlagsConfig      `json:"flags"`
	Metrics    metrics.Config   `json:"metrics"`
	Results    ResultsConfig    `json:"results"`
	Logging    LoggingConfig    `json:"logging"`
	Sentry     SentryConfig     `json:"sentry"`
}

// FlagsConfig selects where candidate flags are forwarded.
type FlagsConfig struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

// ResultsConfig locates the replicate result store. An empty path stores
// results.db in the output directory; "-" disables the store.
type ResultsConfig struct {
	Path string `json:"path"`
}

// Load reads the file at path, applies environment overrides, defaults and
// validation. Relative input paths are resolved against the config file
// directory.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Inputs.Resolve(filepath.Dir(path))
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Logging.SetDefaults()
	c.Sentry.SetDefaults()
	if c.Results.Path == "" {
		c.Results.Path = filepath.Join(c.Simulation.OutputDir, "results.db")
	}
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Inputs.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Sentry.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Programs) == 0 {
		errs = append(errs, errors.New("programs: at least one program is required"))
	}
	seen := map[string]bool{}
	daylight := false
	for i, p := range c.Programs {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("programs[%d]: %w", i, err))
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("programs[%d]: duplicate program %q", i, p.Name))
		}
		seen[p.Name] = true
		for _, m := range p.Methods {
			daylight = daylight || m.ConsiderDaylight
		}
	}
	if daylight && c.Simulation.DaylightHours == 0 && (c.Simulation.Latitude < -90 || c.Simulation.Latitude > 90) {
		errs = append(errs, fmt.Errorf("simulation: latitude %g outside [-90,90]", c.Simulation.Latitude))
	}
	for _, s := range c.Flags.Sinks {
		if s.Type == "" {
			errs = append(errs, errors.New("flags: sink type is required"))
		}
	}
	for _, s := range c.Metrics.Sinks {
		if s.Type == "" {
			errs = append(errs, errors.New("metrics: sink type is required"))
		}
	}
	return errors.Join(errs...)
}

// MethodNames returns the distinct method names used by any program, in
// order of first appearance.
func (c Config) MethodNames() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range c.Programs {
		for _, m := range p.Methods {
			if !seen[m.Name] {
				seen[m.Name] = true
				out = append(out, m.Name)
			}
		}
	}
	return out
}

// ProgramNames returns the program names in configuration order. The first
// program is the reference of the comparison report.
func (c Config) ProgramNames() []string {
	out := make([]string, len(c.Programs))
	for i, p := range c.Programs {
		out[i] = p.Name
	}
	return out
}
