package input

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadSamples reads an empirical sample set: the first column of every
// row. A non-numeric first line is treated as a header. Used for offsite
// times (minutes) and vent rates (g/s).
func LoadSamples(name string, r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var out []float64
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := strings.TrimSpace(strings.TrimPrefix(row[0], "\ufeff"))
		if cell == "" {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%s line %d: %w", name, i+1, err)
		}
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%s line %d: sample must be finite and >= 0, got %g", name, i+1, v)
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadSamplesFile reads a sample set from path. An empty path yields no
// samples.
func LoadSamplesFile(path string) ([]float64, error) {
	if path == "" {
		return nil, nil
	}
	name := filepath.Base(path)
	var out []float64
	err := openFile(path, func(r io.Reader) error {
		var err error
		out, err = LoadSamples(name, r)
		return err
	})
	return out, err
}
