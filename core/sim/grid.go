package sim

import "time"

// DeploymentGrid tells whether weather permits a site visit at a grid cell on
// a given timestep.
type DeploymentGrid interface {
	Eligible(lon, lat, timestep int) bool
	Dims() (nLon, nLat, nTimesteps int)
}

// BoolGrid is a dense DeploymentGrid.
type BoolGrid struct {
	nLon, nLat, nT int
	cells          []bool
}

// NewBoolGrid returns a grid with every cell ineligible.
func NewBoolGrid(nLon, nLat, nT int) *BoolGrid {
	return &BoolGrid{nLon: nLon, nLat: nLat, nT: nT, cells: make([]bool, nLon*nLat*nT)}
}

// NewUniformGrid returns a grid where every cell has value v.
func NewUniformGrid(nLon, nLat, nT int, v bool) *BoolGrid {
	g := NewBoolGrid(nLon, nLat, nT)
	if v {
		for i := range g.cells {
			g.cells[i] = true
		}
	}
	return g
}

func (g *BoolGrid) offset(lon, lat, t int) (int, bool) {
	if lon < 0 || lat < 0 || t < 0 || lon >= g.nLon || lat >= g.nLat || t >= g.nT {
		return 0, false
	}
	return (lon*g.nLat+lat)*g.nT + t, true
}

// Set assigns one cell. Out of range cells are ignored.
func (g *BoolGrid) Set(lon, lat, t int, v bool) {
	if i, ok := g.offset(lon, lat, t); ok {
		g.cells[i] = v
	}
}

// Eligible implements DeploymentGrid. Out of range lookups are ineligible.
func (g *BoolGrid) Eligible(lon, lat, t int) bool {
	i, ok := g.offset(lon, lat, t)
	return ok && g.cells[i]
}

// Dims implements DeploymentGrid.
func (g *BoolGrid) Dims() (int, int, int) { return g.nLon, g.nLat, g.nT }

// EligibleShare returns the fraction of eligible cells, used for logging.
func (g *BoolGrid) EligibleShare() float64 {
	if len(g.cells) == 0 {
		return 0
	}
	n := 0
	for _, c := range g.cells {
		if c {
			n++
		}
	}
	return float64(n) / float64(len(g.cells))
}

// DaylightProvider returns the number of daylight hours on a date.
type DaylightProvider interface {
	DaylightHours(date time.Time) float64
}

// ConstantDaylight returns the same number of hours every day.
type ConstantDaylight float64

// DaylightHours implements DaylightProvider.
func (c ConstantDaylight) DaylightHours(time.Time) float64 { return float64(c) }
