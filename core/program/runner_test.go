package program

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/core/crew"
	"github.com/kilianp07/ldarsim/core/flags"
	coremetrics "github.com/kilianp07/ldarsim/core/metrics"
	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/core/sim"
)

const ogi = "OGI"

func ogiMethod() model.MethodConfig {
	return model.MethodConfig{
		Name:           ogi,
		NCrews:         1,
		MaxWorkday:     10,
		MinInterval:    0,
		MDL:            0.5,
		FollowUpThresh: 0.5,
		CostPerDay:     100,
	}
}

// fixture builds nSites in a row, each with one 1 g/s leak, surveyed in
// 300 minute visits so a 10h day fits two visits.
func fixture(t *testing.T, start time.Time, days, nSites int) *sim.SimulationContext {
	t.Helper()
	var sites []*model.Site
	var leaks []*model.Leak
	for i := 0; i < nSites; i++ {
		s := model.NewSite(string(rune('A'+i)), i, 0)
		st := s.Method(ogi)
		st.RequiredSurveys = 1000
		st.SurveyMinutes = 300
		sites = append(sites, s)
		leaks = append(leaks, &model.Leak{ID: "L" + s.ID, FacilityID: s.ID, Status: model.LeakActive, Rate: 1})
	}
	reg, err := sim.NewRegistry(sites, leaks)
	require.NoError(t, err)
	return &sim.SimulationContext{
		Registry: reg,
		Clock:    sim.NewClock(start, days),
		Grids:    map[string]sim.DeploymentGrid{ogi: sim.NewUniformGrid(nSites, 1, days, true)},
		Daylight: sim.ConstantDaylight(12),
		Series:   sim.NewTimeSeries(days, []string{ogi}),
		Sampler:  sim.NewSeededSampler(1, nil, nil),
	}
}

type countingMetrics struct{ recs []coremetrics.TimestepRecord }

func (c *countingMetrics) RecordTimestep(r coremetrics.TimestepRecord) error {
	c.recs = append(c.recs, r)
	return nil
}

func TestRunner_TimeSinceRecurrence(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 12, 5)
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{ogiMethod()}, Context: ctx})
	require.NoError(t, err)

	sites := ctx.Registry.Sites()
	prevSince := make([]int, len(sites))
	prevDone := make([]int, len(sites))
	for day := 0; day < 12; day++ {
		require.NoError(t, r.Step(context.Background()))
		visited := 0
		for i, s := range sites {
			st := s.Method(ogi)
			if st.SurveysConducted > prevDone[i] {
				visited++
				assert.Equal(t, 0, st.TimeSinceLastSurvey, "day %d site %s", day, s.ID)
			} else {
				assert.Equal(t, prevSince[i]+1, st.TimeSinceLastSurvey, "day %d site %s", day, s.ID)
			}
			prevSince[i] = st.TimeSinceLastSurvey
			prevDone[i] = st.SurveysConducted
		}
		assert.Equal(t, 2, visited, "day %d", day)
		assert.Equal(t, 2, ctx.Series.SitesVisited[ogi][day])
	}
	assert.True(t, ctx.Clock.Done())
	assert.Error(t, r.Step(context.Background()))
}

func TestRunner_YearRolloverResetsQuota(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 12, 30, 0, 0, 0, 0, time.UTC), 4, 1)
	st := ctx.Registry.Sites()[0].Method(ogi)
	st.RequiredSurveys = 2
	m := ogiMethod()
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{m}, Context: ctx})
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Step(context.Background()))
	}
	// Dec 30 and Dec 31 use the 2020 quota, Jan 1 and Jan 2 the 2021 one.
	assert.Equal(t, []int{1, 1, 1, 1}, ctx.Series.SitesVisited[ogi])
	assert.Equal(t, 2, st.SurveysDoneThisYear)
	assert.Equal(t, 4, st.SurveysConducted)
}

func TestRunner_QuotaExhaustedWithinYear(t *testing.T) {
	ctx := fixture(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), 3, 1)
	ctx.Registry.Sites()[0].Method(ogi).RequiredSurveys = 1
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{ogiMethod()}, Context: ctx})
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0}, ctx.Series.SitesVisited[ogi])
	assert.Equal(t, []float64{100, 0, 0}, ctx.Series.TotalDailyCost)
}

func TestRunner_ForwardsFlagsAndRecordsDay(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 3, 3)
	sink := flags.NewMemorySink()
	met := &countingMetrics{}
	r, err := NewRunner(Options{
		RunID:     "run-1",
		Program:   "P_OGI",
		Replicate: 4,
		Seed:      99,
		Methods:   []model.MethodConfig{ogiMethod()},
		Context:   ctx,
		Flags:     sink,
		Metrics:   met,
	})
	require.NoError(t, err)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	recs := sink.Records()
	require.Len(t, recs, 6)
	assert.Equal(t, "A", recs[0].FacilityID)
	assert.Equal(t, "B", recs[1].FacilityID)
	assert.Equal(t, "C", recs[2].FacilityID)
	assert.Equal(t, "P_OGI", recs[0].Program)
	assert.Equal(t, 4, recs[0].Replicate)
	assert.Equal(t, "OGI-1", recs[0].CrewID)

	assert.Equal(t, []int{2, 2, 2}, ctx.Series.CandidateFlags)
	assert.Equal(t, []int{3, 3, 3}, ctx.Series.ActiveLeaks)
	assert.InDelta(t, 3*86400.0/1000, ctx.Series.DailyEmissions[0], 1e-9)
	assert.Equal(t, time.Date(2020, 3, 2, 0, 0, 0, 0, time.UTC), ctx.Series.Dates[1])

	require.Len(t, met.recs, 3)
	assert.Equal(t, 2, met.recs[0].SitesVisited[ogi])
	assert.Equal(t, 100.0, met.recs[0].TotalCost)

	assert.Equal(t, uint64(99), res.Seed)
	assert.Equal(t, 6, res.Totals.SitesVisited)
	assert.Equal(t, 6, res.Totals.CandidateFlags)
	assert.Equal(t, 300.0, res.Totals.TotalCost)
	// A wins every registry-order tie: days 0, 1 and 2.
	require.Len(t, res.Sites, 3)
	assert.Equal(t, 3, res.Sites[0].SurveysConducted)
	assert.Equal(t, 1, res.Sites[2].SurveysConducted)
}

func TestRunner_TwoCrewsShareNoSiteInADay(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 1, 4)
	m := ogiMethod()
	m.NCrews = 2
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{m}, Context: ctx})
	require.NoError(t, err)
	require.Len(t, r.Crews(), 2)
	assert.Equal(t, "OGI-2", r.Crews()[1].ID())

	require.NoError(t, r.Step(context.Background()))
	for _, s := range ctx.Registry.Sites() {
		assert.Equal(t, 1, s.Method(ogi).SurveysConducted, s.ID)
	}
	assert.Equal(t, 200.0, ctx.Series.TotalDailyCost[0])
}

func TestRunner_CrewErrorAbortsReplicate(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 3, 1)
	m := ogiMethod()
	m.MaxWorkday = 0
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{m}, Context: ctx})
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, crew.ErrInvalidScheduleConfiguration)
	assert.Equal(t, 0, ctx.Clock.Timestep())
}

type failingSink struct{}

func (failingSink) Forward(context.Context, flags.Batch) error { return errors.New("broker down") }

func TestRunner_FlagSinkErrorAbortsReplicate(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 3, 1)
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{ogiMethod()}, Context: ctx, Flags: failingSink{}})
	require.NoError(t, err)
	_, err = r.Run(context.Background())
	assert.ErrorContains(t, err, "broker down")
}

func TestRunner_ContextCancelled(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 5, 1)
	r, err := NewRunner(Options{Program: "P", Methods: []model.MethodConfig{ogiMethod()}, Context: ctx})
	require.NoError(t, err)
	cctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Run(cctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunner_Validation(t *testing.T) {
	ctx := fixture(t, time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC), 3, 1)
	_, err := NewRunner(Options{Program: "P", Context: ctx})
	assert.Error(t, err)

	_, err = NewRunner(Options{Program: "P", Methods: []model.MethodConfig{ogiMethod()}})
	assert.Error(t, err)

	bad := ogiMethod()
	bad.MDL = 0
	_, err = NewRunner(Options{Program: "P", Methods: []model.MethodConfig{bad}, Context: ctx})
	assert.Error(t, err)

	other := ogiMethod()
	other.Name = "aircraft"
	_, err = NewRunner(Options{Program: "P", Methods: []model.MethodConfig{other}, Context: ctx})
	assert.ErrorContains(t, err, "aircraft")
}
