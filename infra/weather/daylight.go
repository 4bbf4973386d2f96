package weather

import (
	"fmt"
	"math"
	"time"
)

// Astronomical computes day length from latitude and day of year.
type Astronomical struct {
	latRad float64
}

// NewAstronomical returns a provider for a latitude in degrees.
func NewAstronomical(latitude float64) (*Astronomical, error) {
	if latitude < -90 || latitude > 90 || math.IsNaN(latitude) {
		return nil, fmt.Errorf("latitude %g outside [-90,90]", latitude)
	}
	return &Astronomical{latRad: latitude * math.Pi / 180}, nil
}

// DaylightHours implements sim.DaylightProvider. Polar day and night clamp
// to 24 and 0 hours.
func (a *Astronomical) DaylightHours(date time.Time) float64 {
	n := float64(date.YearDay())
	decl := 23.44 * math.Pi / 180 * math.Sin(2*math.Pi*(284+n)/365)
	x := -math.Tan(a.latRad) * math.Tan(decl)
	switch {
	case x <= -1:
		return 24
	case x >= 1:
		return 0
	}
	// hour angle in degrees, 15° per hour
	return 2 * math.Acos(x) * 180 / math.Pi / 15
}
