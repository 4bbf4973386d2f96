package input

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/kilianp07/ldarsim/infra/weather"
)

// LoadWeather reads the gridded weather table: lon_index, lat_index,
// timestep, temp (°C), wind (m/s) and precip (mm).
func LoadWeather(r io.Reader) (*weather.Table, error) {
	t, err := readTable("weather", r)
	if err != nil {
		return nil, err
	}
	if err := t.require("lon_index", "lat_index", "timestep", "temp", "wind", "precip"); err != nil {
		return nil, err
	}
	obs := make([]weather.Observation, len(t.rows))
	for i := range t.rows {
		o := &obs[i]
		if o.Lon, err = t.int(i, "lon_index"); err != nil {
			return nil, err
		}
		if o.Lat, err = t.int(i, "lat_index"); err != nil {
			return nil, err
		}
		if o.Timestep, err = t.int(i, "timestep"); err != nil {
			return nil, err
		}
		if o.Temp, err = t.float(i, "temp"); err != nil {
			return nil, err
		}
		if o.Wind, err = t.float(i, "wind"); err != nil {
			return nil, err
		}
		if o.Precip, err = t.float(i, "precip"); err != nil {
			return nil, err
		}
	}
	return weather.NewTable(obs)
}

// LoadWeatherFile reads the weather table at path.
func LoadWeatherFile(path string) (*weather.Table, error) {
	var tbl *weather.Table
	err := openFile(path, func(r io.Reader) error {
		var err error
		tbl, err = LoadWeather(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return tbl, nil
}
