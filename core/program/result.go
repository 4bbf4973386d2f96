package program

import "github.com/kilianp07/ldarsim/core/sim"

// Result is the output of one completed replicate.
type Result struct {
	RunID     string
	Program   string
	Replicate int
	Seed      uint64
	Series    *sim.TimeSeries
	Totals    sim.Totals
	Sites     []SiteSummary
}

// SiteSummary is the end state of one site for one method.
type SiteSummary struct {
	FacilityID          string
	Method              string
	RequiredSurveys     int
	SurveysDoneThisYear int
	SurveysConducted    int
	TimeSinceLastSurvey int
	MissedLeaks         int
}

func (r *Runner) result() *Result {
	res := &Result{
		RunID:     r.opts.RunID,
		Program:   r.opts.Program,
		Replicate: r.opts.Replicate,
		Seed:      r.opts.Seed,
		Series:    r.ctx.Series,
		Totals:    r.ctx.Series.Totals(),
	}
	for _, s := range r.ctx.Registry.Sites() {
		for _, m := range r.opts.Methods {
			st := s.Method(m.Name)
			res.Sites = append(res.Sites, SiteSummary{
				FacilityID:          s.ID,
				Method:              m.Name,
				RequiredSurveys:     st.RequiredSurveys,
				SurveysDoneThisYear: st.SurveysDoneThisYear,
				SurveysConducted:    st.SurveysConducted,
				TimeSinceLastSurvey: st.TimeSinceLastSurvey,
				MissedLeaks:         st.MissedLeaks,
			})
		}
	}
	return res
}
