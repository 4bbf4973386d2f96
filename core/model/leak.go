package model

import "fmt"

// LeakStatus is the lifecycle state of a leak.
type LeakStatus int

const (
	LeakActive LeakStatus = iota
	LeakRepaired
)

// String implements fmt.Stringer.
func (s LeakStatus) String() string {
	switch s {
	case LeakActive:
		return "active"
	case LeakRepaired:
		return "repaired"
	default:
		return "unknown"
	}
}

// ParseLeakStatus converts the textual status used in input tables.
func ParseLeakStatus(s string) (LeakStatus, error) {
	switch s {
	case "", "active":
		return LeakActive, nil
	case "repaired":
		return LeakRepaired, nil
	default:
		return LeakActive, fmt.Errorf("unknown leak status %q", s)
	}
}

// Leak is one emission source attached to a facility.
type Leak struct {
	ID         string
	FacilityID string
	Status     LeakStatus
	Rate       float64 // true emission rate, g/s
}

// Active reports whether the leak is still emitting.
func (l *Leak) Active() bool { return l.Status == LeakActive }

// Validate checks the leak attributes.
func (l *Leak) Validate() error {
	if l.FacilityID == "" {
		return fmt.Errorf("leak %s: facility is required", l.ID)
	}
	if l.Rate < 0 {
		return fmt.Errorf("leak %s: negative rate %.4f", l.ID, l.Rate)
	}
	return nil
}
