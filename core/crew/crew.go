package crew

import (
	"fmt"
	"time"

	"github.com/kilianp07/ldarsim/core/logger"
	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/core/sim"
)

const day = 24 * time.Hour

// Crew is one inspection agent of a detection method.
type Crew struct {
	id     string
	method model.MethodConfig
	ctx    *sim.SimulationContext
	grid   sim.DeploymentGrid
	log    logger.Logger

	// per-day scratch state
	cursor      time.Duration // time since local midnight
	workedToday bool
}

// New creates a crew bound to the simulation context.
func New(id string, method model.MethodConfig, ctx *sim.SimulationContext, log logger.Logger) (*Crew, error) {
	if ctx == nil {
		return nil, fmt.Errorf("crew %s: nil simulation context", id)
	}
	g, err := ctx.Grid(method.Name)
	if err != nil {
		return nil, fmt.Errorf("crew %s: %w", id, err)
	}
	return &Crew{
		id:     id,
		method: method,
		ctx:    ctx,
		grid:   g,
		log:    log.With(map[string]any{"crew": id, "method": method.Name}),
	}, nil
}

// ID returns the crew identifier.
func (c *Crew) ID() string { return c.id }

// Method returns the method configuration of the crew.
func (c *Crew) Method() model.MethodConfig { return c.method }

// WorkedToday reports whether the last WorkADay call visited at least one site.
func (c *Crew) WorkedToday() bool { return c.workedToday }

// WorkHours returns the length of today's work window.
func (c *Crew) WorkHours() (float64, error) {
	hours := c.method.MaxWorkday
	if c.method.ConsiderDaylight {
		if c.ctx.Daylight == nil {
			return 0, fmt.Errorf("crew %s: no daylight provider", c.id)
		}
		if d := c.ctx.Daylight.DaylightHours(c.ctx.Clock.Current()); d < hours {
			hours = d
		}
	}
	if hours <= 0 || hours >= 24 {
		return hours, &InvalidScheduleConfigurationError{CrewID: c.id, Method: c.method.Name, WorkHours: hours}
	}
	return hours, nil
}

// WorkADay runs one simulated day for the crew, appending any candidate
// flags to flags.
func (c *Crew) WorkADay(flags *[]model.CandidateFlag) error {
	c.workedToday = false

	hours, err := c.WorkHours()
	if err != nil {
		c.log.Errorf("unreasonable work hours: %v", err)
		return err
	}

	start := hoursToDuration((24 - hours) / 2)
	end := start + hoursToDuration(hours)
	c.cursor = start + c.offsite()

	for c.cursor < end {
		id, found, site := c.ChooseSite()
		if !found {
			break
		}
		if err := c.VisitSite(id, site, flags); err != nil {
			return err
		}
		c.workedToday = true
	}

	if c.workedToday {
		c.ctx.Series.AddCost(c.method.Name, c.ctx.Clock.Timestep(), c.method.CostPerDay)
	}
	return nil
}

// offsite draws a travel duration truncated to whole minutes.
func (c *Crew) offsite() time.Duration {
	return time.Duration(int(c.ctx.Sampler.OffsiteMinutes())) * time.Minute
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}
