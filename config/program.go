package config

import (
	"errors"
	"fmt"

	"github.com/kilianp07/ldarsim/core/model"
)

// ProgramConfig is one LDAR program: a named set of detection methods run
// together in each replicate.
type ProgramConfig struct {
	Name    string               `json:"name"`
	Methods []model.MethodConfig `json:"methods"`
}

// Validate checks the program and each of its methods.
func (p ProgramConfig) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if len(p.Methods) == 0 {
		errs = append(errs, fmt.Errorf("program %q: at least one method is required", p.Name))
	}
	seen := map[string]bool{}
	for _, m := range p.Methods {
		if err := m.Validate(); err != nil {
			errs = append(errs, err)
		}
		if seen[m.Name] {
			errs = append(errs, fmt.Errorf("program %q: duplicate method %q", p.Name, m.Name))
		}
		seen[m.Name] = true
	}
	return errors.Join(errs...)
}
