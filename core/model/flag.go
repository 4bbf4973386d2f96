package model

import "time"

// CandidateFlag is produced when a visit measures emissions above the
// follow-up threshold of the surveying method.
type CandidateFlag struct {
	Timestep     int
	Date         time.Time
	Method       string
	CrewID       string
	Site         *Site
	Leaks        []*Leak // leaks present at detection time
	SiteRate     float64 // true aggregate rate including venting
	MeasuredRate float64
	Venting      float64
}

// LeakIDs returns the identifiers of the leaks carried by the flag.
func (f CandidateFlag) LeakIDs() []string {
	ids := make([]string, len(f.Leaks))
	for i, l := range f.Leaks {
		ids[i] = l.ID
	}
	return ids
}

// FacilityID returns the flagged site id, or an empty string.
func (f CandidateFlag) FacilityID() string {
	if f.Site == nil {
		return ""
	}
	return f.Site.ID
}
