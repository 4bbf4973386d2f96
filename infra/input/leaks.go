package input

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/kilianp07/ldarsim/core/model"
)

// LoadLeaks reads the leak table: leak_ID, facility_ID, rate (g/s) and an
// optional status column ("active" when empty).
func LoadLeaks(r io.Reader) ([]*model.Leak, error) {
	t, err := readTable("leaks", r)
	if err != nil {
		return nil, err
	}
	if err := t.require("leak_ID", "facility_ID", "rate"); err != nil {
		return nil, err
	}
	leaks := make([]*model.Leak, 0, len(t.rows))
	for i := range t.rows {
		rate, err := t.float(i, "rate")
		if err != nil {
			return nil, err
		}
		status, err := model.ParseLeakStatus(t.str(i, "status"))
		if err != nil {
			return nil, fmt.Errorf("leaks line %d: %w", i+2, err)
		}
		l := &model.Leak{
			ID:         t.str(i, "leak_ID"),
			FacilityID: t.str(i, "facility_ID"),
			Status:     status,
			Rate:       rate,
		}
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("leaks line %d: %w", i+2, err)
		}
		leaks = append(leaks, l)
	}
	return leaks, nil
}

// LoadLeaksFile reads the leak table at path.
func LoadLeaksFile(path string) ([]*model.Leak, error) {
	var leaks []*model.Leak
	err := openFile(path, func(r io.Reader) error {
		var err error
		leaks, err = LoadLeaks(r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return leaks, nil
}
