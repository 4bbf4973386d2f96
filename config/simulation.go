package config

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the layout of simulation.start_date.
const DateLayout = "2006-01-02"

// SimulationConfig holds the batch parameters shared by every program.
type SimulationConfig struct {
	StartDate    string `json:"start_date"`
	Timesteps    int    `json:"timesteps"`
	NSimulations int    `json:"n_simulations"`
	// NProcesses bounds concurrent replicates; 0 uses every CPU.
	NProcesses       int           `json:"n_processes"`
	Seed             uint64        `json:"seed"`
	ReplicateTimeout time.Duration `json:"replicate_timeout"`
	OutputDir        string        `json:"output_dir"`
	ConsiderVenting  bool          `json:"consider_venting"`
	// Latitude feeds the astronomical daylight provider.
	Latitude float64 `json:"latitude"`
	// DaylightHours, when > 0, replaces the astronomical provider with a
	// constant day length.
	DaylightHours float64 `json:"daylight_hours"`
}

// SetDefaults applies sane defaults.
func (c *SimulationConfig) SetDefaults() {
	if c.Timesteps == 0 {
		c.Timesteps = 365
	}
	if c.NSimulations == 0 {
		c.NSimulations = 1
	}
	if c.OutputDir == "" {
		c.OutputDir = "output"
	}
}

// Start parses StartDate as a UTC midnight.
func (c SimulationConfig) Start() (time.Time, error) {
	t, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("simulation: start_date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// Validate checks mandatory fields and ranges.
func (c SimulationConfig) Validate() error {
	var errs []error
	if _, err := c.Start(); err != nil {
		errs = append(errs, err)
	}
	if c.Timesteps <= 0 {
		errs = append(errs, fmt.Errorf("simulation: timesteps must be > 0, got %d", c.Timesteps))
	}
	if c.NSimulations <= 0 {
		errs = append(errs, fmt.Errorf("simulation: n_simulations must be > 0, got %d", c.NSimulations))
	}
	if c.NProcesses < 0 {
		errs = append(errs, fmt.Errorf("simulation: n_processes must be >= 0, got %d", c.NProcesses))
	}
	if c.ReplicateTimeout < 0 {
		errs = append(errs, errors.New("simulation: replicate_timeout must be >= 0"))
	}
	if c.DaylightHours < 0 || c.DaylightHours > 24 {
		errs = append(errs, fmt.Errorf("simulation: daylight_hours must be within [0,24], got %g", c.DaylightHours))
	}
	return errors.Join(errs...)
}
