package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ldarsim/core/model"
)

type MethodDef struct {
	Name           string  `yaml:"name"`
	NCrews         int     `yaml:"n_crews"`
	MaxWorkday     float64 `yaml:"max_workday"`
	MinInterval    int     `yaml:"min_interval"`
	MDL            float64 `yaml:"mdl"`
	QE             float64 `yaml:"qe"`
	FollowUpThresh float64 `yaml:"follow_up_thresh"`
	CostPerDay     float64 `yaml:"cost_per_day"`
}

func (m MethodDef) ToModel() model.MethodConfig {
	n := m.NCrews
	if n == 0 {
		n = 1
	}
	return model.MethodConfig{
		Name:           m.Name,
		NCrews:         n,
		MaxWorkday:     m.MaxWorkday,
		MinInterval:    m.MinInterval,
		MDL:            m.MDL,
		QE:             m.QE,
		FollowUpThresh: m.FollowUpThresh,
		CostPerDay:     m.CostPerDay,
	}
}

type SiteDef struct {
	ID             string  `yaml:"id"`
	Since          int     `yaml:"since"`
	Required       int     `yaml:"required"`
	Done           int     `yaml:"done"`
	Minutes        float64 `yaml:"minutes"`
	IneligibleDays []int   `yaml:"ineligible_days,omitempty"`
}

func (s SiteDef) ToModel(method string, lon int) *model.Site {
	site := model.NewSite(s.ID, lon, 0)
	st := site.Method(method)
	st.TimeSinceLastSurvey = s.Since
	st.RequiredSurveys = s.Required
	st.SurveysDoneThisYear = s.Done
	st.SurveyMinutes = s.Minutes
	return site
}

type LeakDef struct {
	ID       string  `yaml:"id"`
	Facility string  `yaml:"facility"`
	Rate     float64 `yaml:"rate"`
}

func (l LeakDef) ToModel() *model.Leak {
	return &model.Leak{ID: l.ID, FacilityID: l.Facility, Rate: l.Rate}
}

type Expected struct {
	Flags     int             `yaml:"flags"`
	Measured  []float64       `yaml:"measured,omitempty"`
	Visits    map[string]int  `yaml:"visits,omitempty"`
	Since     map[string]int  `yaml:"since,omitempty"`
	Attempted map[string]bool `yaml:"attempted,omitempty"`
	Missed    map[string]int  `yaml:"missed,omitempty"`
	Cost      *float64        `yaml:"cost,omitempty"`
}

// Scenario runs crews directly for Calls work-a-day calls on the first day,
// or, when Days > 0, runs the day orchestrator for that many days.
type Scenario struct {
	Name           string    `yaml:"name"`
	Description    string    `yaml:"description,omitempty"`
	StartDate      string    `yaml:"start_date,omitempty"`
	Days           int       `yaml:"days,omitempty"`
	Calls          int       `yaml:"calls,omitempty"`
	OffsiteMinutes float64   `yaml:"offsite_minutes,omitempty"`
	Method         MethodDef `yaml:"method"`
	Sites          []SiteDef `yaml:"sites"`
	Leaks          []LeakDef `yaml:"leaks,omitempty"`
	Expected       Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
