package scenarios

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/kilianp07/ldarsim/core/crew"
	"github.com/kilianp07/ldarsim/core/flags"
	"github.com/kilianp07/ldarsim/core/model"
	"github.com/kilianp07/ldarsim/core/program"
	"github.com/kilianp07/ldarsim/core/sim"
	"github.com/kilianp07/ldarsim/infra/logger"
)

func (sc *Scenario) context(t *testing.T) *sim.SimulationContext {
	t.Helper()
	method := sc.Method.Name
	steps := max(sc.Days, 1)
	sites := make([]*model.Site, len(sc.Sites))
	grid := sim.NewUniformGrid(max(len(sc.Sites), 1), 1, steps, true)
	for i, s := range sc.Sites {
		sites[i] = s.ToModel(method, i)
		for _, d := range s.IneligibleDays {
			grid.Set(i, 0, d, false)
		}
	}
	leaks := make([]*model.Leak, len(sc.Leaks))
	for i, l := range sc.Leaks {
		leaks[i] = l.ToModel()
	}
	reg, err := sim.NewRegistry(sites, leaks)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	if sc.StartDate != "" {
		if start, err = time.Parse("2006-01-02", sc.StartDate); err != nil {
			t.Fatalf("start_date: %v", err)
		}
	}
	return &sim.SimulationContext{
		Registry: reg,
		Clock:    sim.NewClock(start, steps),
		Grids:    map[string]sim.DeploymentGrid{method: grid},
		Daylight: sim.ConstantDaylight(12),
		Series:   sim.NewTimeSeries(steps, []string{method}),
		Sampler:  sim.NewSeededSampler(1, []float64{sc.OffsiteMinutes}, nil),
	}
}

func RunScenario(t *testing.T, sc *Scenario) {
	ctx := sc.context(t)
	m := sc.Method.ToModel()

	var got []model.CandidateFlag
	if sc.Days > 0 {
		sink := flags.NewMemorySink()
		runner, err := program.NewRunner(program.Options{
			Program: sc.Name,
			Methods: []model.MethodConfig{m},
			Context: ctx,
			Flags:   sink,
			Log:     logger.NopLogger{},
		})
		if err != nil {
			t.Fatalf("runner: %v", err)
		}
		if _, err := runner.Run(context.Background()); err != nil {
			t.Fatalf("run: %v", err)
		}
		for _, r := range sink.Records() {
			got = append(got, model.CandidateFlag{MeasuredRate: r.MeasuredRate})
		}
	} else {
		c, err := crew.New(m.Name+"-1", m, ctx, logger.NopLogger{})
		if err != nil {
			t.Fatalf("crew: %v", err)
		}
		for i := 0; i < max(sc.Calls, 1); i++ {
			if err := c.WorkADay(&got); err != nil {
				t.Fatalf("work a day: %v", err)
			}
		}
	}

	exp := sc.Expected
	if len(got) != exp.Flags {
		t.Errorf("scenario %s expected %d flags, got %d", sc.Name, exp.Flags, len(got))
	}
	for i, want := range exp.Measured {
		if i < len(got) && math.Abs(got[i].MeasuredRate-want) > 1e-9 {
			t.Errorf("scenario %s flag %d measured %g, want %g", sc.Name, i, got[i].MeasuredRate, want)
		}
	}
	for _, s := range ctx.Registry.Sites() {
		st := s.Method(m.Name)
		if want, ok := exp.Visits[s.ID]; ok && st.SurveysConducted != want {
			t.Errorf("scenario %s site %s expected %d visits, got %d", sc.Name, s.ID, want, st.SurveysConducted)
		}
		if want, ok := exp.Since[s.ID]; ok && st.TimeSinceLastSurvey != want {
			t.Errorf("scenario %s site %s expected since %d, got %d", sc.Name, s.ID, want, st.TimeSinceLastSurvey)
		}
		if want, ok := exp.Attempted[s.ID]; ok && st.AttemptedToday != want {
			t.Errorf("scenario %s site %s expected attempted %v, got %v", sc.Name, s.ID, want, st.AttemptedToday)
		}
		if want, ok := exp.Missed[s.ID]; ok && st.MissedLeaks != want {
			t.Errorf("scenario %s site %s expected %d missed leaks, got %d", sc.Name, s.ID, want, st.MissedLeaks)
		}
	}
	if exp.Cost != nil {
		if cost := ctx.Series.Totals().TotalCost; math.Abs(cost-*exp.Cost) > 1e-9 {
			t.Errorf("scenario %s expected cost %g, got %g", sc.Name, *exp.Cost, cost)
		}
	}
}
