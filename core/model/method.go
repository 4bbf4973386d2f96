package model

import (
	"errors"
	"fmt"
)

// MethodConfig describes one detection method and its crews.
type MethodConfig struct {
	Name             string  `json:"name"`
	NCrews           int     `json:"n_crews"`
	MaxWorkday       float64 `json:"max_workday"` // hours
	ConsiderDaylight bool    `json:"consider_daylight"`
	MinTemp          float64 `json:"min_temp"`   // °C
	MaxWind          float64 `json:"max_wind"`   // m/s
	MaxPrecip        float64 `json:"max_precip"` // mm
	MinInterval      int     `json:"min_interval"`
	MDL              float64 `json:"MDL"` // g/s
	QE               float64 `json:"QE"`
	FollowUpThresh   float64 `json:"follow_up_thresh"` // g/s
	CostPerDay       float64 `json:"cost_per_day"`
}

// Validate checks the ranges documented for method configuration.
func (m MethodConfig) Validate() error {
	var errs []error
	if m.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if m.NCrews < 0 {
		errs = append(errs, fmt.Errorf("n_crews must be >= 0, got %d", m.NCrews))
	}
	if m.MaxWorkday < 0 || m.MaxWorkday > 24 {
		errs = append(errs, fmt.Errorf("max_workday must be within [0,24], got %.2f", m.MaxWorkday))
	}
	if m.MinInterval < 0 {
		errs = append(errs, fmt.Errorf("min_interval must be >= 0, got %d", m.MinInterval))
	}
	if m.MDL <= 0 {
		errs = append(errs, fmt.Errorf("MDL must be > 0, got %g", m.MDL))
	}
	if m.QE < 0 {
		errs = append(errs, fmt.Errorf("QE must be >= 0, got %g", m.QE))
	}
	if m.FollowUpThresh <= 0 {
		errs = append(errs, fmt.Errorf("follow_up_thresh must be > 0, got %g", m.FollowUpThresh))
	}
	if m.CostPerDay < 0 {
		errs = append(errs, fmt.Errorf("cost_per_day must be >= 0, got %g", m.CostPerDay))
	}
	if len(errs) > 0 {
		return fmt.Errorf("method %q: %w", m.Name, errors.Join(errs...))
	}
	return nil
}
