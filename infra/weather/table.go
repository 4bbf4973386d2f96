package weather

import (
	"fmt"
	"math"

	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/core/sim"
)

// Observation is the weather of one grid cell on one timestep.
type Observation struct {
	Lon      int
	Lat      int
	Timestep int
	Temp     float64 // °C
	Wind     float64 // m/s
	Precip   float64 // mm
}

// Table is a validated set of observations.
type Table struct {
	obs            []Observation
	nLon, nLat, nT int
}

// NewTable indexes the observations. Indices must be non-negative, values
// finite and every (lon, lat, timestep) unique.
func NewTable(obs []Observation) (*Table, error) {
	t := &Table{obs: obs}
	seen := make(map[[3]int]struct{}, len(obs))
	for i, o := range obs {
		if o.Lon < 0 || o.Lat < 0 || o.Timestep < 0 {
			return nil, fmt.Errorf("weather row %d: negative index (%d,%d,%d)", i, o.Lon, o.Lat, o.Timestep)
		}
		for _, v := range []float64{o.Temp, o.Wind, o.Precip} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("weather row %d: non-finite value", i)
			}
		}
		key := [3]int{o.Lon, o.Lat, o.Timestep}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("weather row %d: duplicate cell (%d,%d,%d)", i, o.Lon, o.Lat, o.Timestep)
		}
		seen[key] = struct{}{}
		t.nLon = max(t.nLon, o.Lon+1)
		t.nLat = max(t.nLat, o.Lat+1)
		t.nT = max(t.nT, o.Timestep+1)
	}
	return t, nil
}

// Dims returns the extent of the table.
func (t *Table) Dims() (nLon, nLat, nTimesteps int) { return t.nLon, t.nLat, t.nT }

// Len returns the number of observations.
func (t *Table) Len() int { return len(t.obs) }

// Permits reports whether an observation passes the weather gates of m.
func Permits(o Observation, m model.MethodConfig) bool {
	return o.Temp >= m.MinTemp && o.Wind <= m.MaxWind && o.Precip <= m.MaxPrecip
}

// Grid builds the deployment grid of method m over the given number of
// timesteps. When the simulation is longer than the table, the table is
// repeated. Cells absent from the table are ineligible.
func (t *Table) Grid(m model.MethodConfig, timesteps int) *sim.BoolGrid {
	g := sim.NewBoolGrid(t.nLon, t.nLat, timesteps)
	if t.nT == 0 {
		return g
	}
	for _, o := range t.obs {
		if !Permits(o, m) {
			continue
		}
		for step := o.Timestep; step < timesteps; step += t.nT {
			g.Set(o.Lon, o.Lat, step, true)
		}
	}
	return g
}

// Grids builds one grid per method.
func (t *Table) Grids(methods []model.MethodConfig, timesteps int) map[string]sim.DeploymentGrid {
	out := make(map[string]sim.DeploymentGrid, len(methods))
	for _, m := range methods {
		out[m.Name] = t.Grid(m, timesteps)
	}
	return out
}

// UniformGrids returns always-eligible grids, used when no weather table is
// configured.
func UniformGrids(methods []model.MethodConfig, nLon, nLat, timesteps int) map[string]sim.DeploymentGrid {
	out := make(map[string]sim.DeploymentGrid, len(methods))
	for _, m := range methods {
		out[m.Name] = sim.NewUniformGrid(nLon, nLat, timesteps, true)
	}
	return out
}
