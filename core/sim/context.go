package sim

import (
	"fmt"

	"github.com/kilianp07/ldarsim/core/model"
)

// SimulationContext is the state mutated by the crews of one replicate.
type SimulationContext struct {
	Registry        *Registry
	Clock           *Clock
	Grids           map[string]DeploymentGrid // per method
	Daylight        DaylightProvider
	Series          *TimeSeries
	Sampler         Sampler
	ConsiderVenting bool
}

// Grid returns the deployment grid of a method.
func (c *SimulationContext) Grid(method string) (DeploymentGrid, error) {
	g, ok := c.Grids[method]
	if !ok || g == nil {
		return nil, fmt.Errorf("no deployment grid for method %s", method)
	}
	return g, nil
}

// Validate checks that every method has a grid covering every site and the
// whole simulated period.
func (c *SimulationContext) Validate(methods []model.MethodConfig) error {
	if c.Registry == nil || c.Clock == nil || c.Series == nil || c.Sampler == nil {
		return fmt.Errorf("simulation context is incomplete")
	}
	for _, m := range methods {
		g, err := c.Grid(m.Name)
		if err != nil {
			return err
		}
		if err := c.Registry.CheckLocations(m.Name, g); err != nil {
			return err
		}
		if _, _, nt := g.Dims(); nt < c.Clock.Timesteps() {
			return fmt.Errorf("deployment grid for %s covers %d timesteps, need %d", m.Name, nt, c.Clock.Timesteps())
		}
		if m.ConsiderDaylight && c.Daylight == nil {
			return fmt.Errorf("method %s considers daylight but no daylight provider is set", m.Name)
		}
	}
	return nil
}
