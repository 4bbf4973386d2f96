package model

import "fmt"

// Site is one monitored facility.
type Site struct {
	ID       string
	LonIndex int // column of the deployment grid
	LatIndex int // row of the deployment grid

	// Methods holds the per-method survey bookkeeping keyed by method name.
	Methods map[string]*SiteMethodState
}

// SiteMethodState tracks the survey cadence of one detection method at a site.
type SiteMethodState struct {
	TimeSinceLastSurvey int     // days since the last successful survey
	RequiredSurveys     int     // annual visit quota
	SurveysDoneThisYear int     // reset on January 1st
	SurveysConducted    int     // lifetime survey count
	AttemptedToday      bool    // cleared at the start of each day
	MissedLeaks         int     // leaks present during an undetected visit
	SurveyMinutes       float64 // travel and survey duration of one visit
}

// NewSite returns a site with an empty method table.
func NewSite(id string, lon, lat int) *Site {
	return &Site{ID: id, LonIndex: lon, LatIndex: lat, Methods: map[string]*SiteMethodState{}}
}

// Method returns the state for method m, creating it when missing.
func (s *Site) Method(m string) *SiteMethodState {
	if s.Methods == nil {
		s.Methods = map[string]*SiteMethodState{}
	}
	st, ok := s.Methods[m]
	if !ok {
		st = &SiteMethodState{}
		s.Methods[m] = st
	}
	return st
}

// Clone returns a deep copy so that replicates never share mutable state.
func (s *Site) Clone() *Site {
	c := &Site{ID: s.ID, LonIndex: s.LonIndex, LatIndex: s.LatIndex, Methods: make(map[string]*SiteMethodState, len(s.Methods))}
	for k, v := range s.Methods {
		st := *v
		c.Methods[k] = &st
	}
	return c
}

// Validate checks the static site attributes.
func (s *Site) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("site id is required")
	}
	if s.LonIndex < 0 || s.LatIndex < 0 {
		return fmt.Errorf("site %s: %w (%d,%d)", s.ID, ErrLocationOutOfGrid, s.LonIndex, s.LatIndex)
	}
	for name, st := range s.Methods {
		if st.RequiredSurveys < 0 {
			return fmt.Errorf("site %s method %s: negative required surveys", s.ID, name)
		}
		if st.TimeSinceLastSurvey < 0 {
			return fmt.Errorf("site %s method %s: negative time since last survey %d", s.ID, name, st.TimeSinceLastSurvey)
		}
		if st.SurveysDoneThisYear < 0 {
			return fmt.Errorf("site %s method %s: negative surveys done this year", s.ID, name)
		}
		if st.SurveyMinutes < 0 {
			return fmt.Errorf("site %s method %s: negative survey time", s.ID, name)
		}
	}
	return nil
}
