package config

import (
	"errors"
	"path/filepath"
)

// InputsConfig locates the CSV input tables. Weather, offsite times and vents
// are optional.
type InputsConfig struct {
	Sites        string `json:"sites"`
	Leaks        string `json:"leaks"`
	Weather      string `json:"weather"`
	OffsiteTimes string `json:"offsite_times"`
	Vents        string `json:"vents"`
}

// Resolve makes relative paths relative to base.
func (c *InputsConfig) Resolve(base string) {
	for _, p := range []*string{&c.Sites, &c.Leaks, &c.Weather, &c.OffsiteTimes, &c.Vents} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Validate checks mandatory fields.
func (c InputsConfig) Validate() error {
	var errs []error
	if c.Sites == "" {
		errs = append(errs, errors.New("inputs: sites is required"))
	}
	if c.Leaks == "" {
		errs = append(errs, errors.New("inputs: leaks is required"))
	}
	return errors.Join(errs...)
}
