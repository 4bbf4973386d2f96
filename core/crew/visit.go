package crew

import (
	"fmt"
	"math"
	"time"

	"github.com/kilianp07/ldarsim/core/model"
)

// minDenominator bounds the divisor of the negative-error branch of Quantify.
const minDenominator = 1e-9

// Quantify applies a quantification error to a true rate. Non-negative errors
// scale the rate by (1+err); negative errors divide it by |err-1|.
func Quantify(rate, qerr float64) (float64, error) {
	var measured float64
	if qerr >= 0 {
		measured = rate + rate*qerr
	} else {
		denom := math.Abs(qerr - 1)
		if !(denom >= minDenominator) {
			return 0, &QuantificationOverflowError{Rate: rate, QuantError: qerr}
		}
		measured = rate / denom
	}
	if math.IsNaN(measured) || math.IsInf(measured, 0) || measured < 0 {
		return 0, &QuantificationOverflowError{Rate: rate, QuantError: qerr}
	}
	return measured, nil
}

// Detected is the binary detection test of the method: the aggregate rate
// must strictly exceed the minimum detection limit.
func (c *Crew) Detected(rate float64) bool {
	return rate > c.method.MDL
}

// VisitSite surveys a site selected by ChooseSite. A candidate flag is
// appended when the measured rate exceeds the follow-up threshold.
func (c *Crew) VisitSite(facilityID string, site *model.Site, flags *[]model.CandidateFlag) error {
	name := c.method.Name
	t := c.ctx.Clock.Timestep()
	st := site.Method(name)

	leaks := c.ctx.Registry.ActiveLeaks(facilityID)
	rate := 0.0
	for _, l := range leaks {
		rate += l.Rate
	}
	venting := 0.0
	if c.ctx.ConsiderVenting {
		venting = c.ctx.Sampler.Vent()
		rate += venting
	}

	if c.Detected(rate) {
		qerr := c.ctx.Sampler.QuantError(c.method.QE)
		measured, err := Quantify(rate, qerr)
		if err != nil {
			return fmt.Errorf("crew %s site %s: %w", c.id, facilityID, err)
		}
		if measured > c.method.FollowUpThresh {
			*flags = append(*flags, model.CandidateFlag{
				Timestep:     t,
				Date:         c.ctx.Clock.Current(),
				Method:       name,
				CrewID:       c.id,
				Site:         site,
				Leaks:        leaks,
				SiteRate:     rate,
				MeasuredRate: measured,
				Venting:      venting,
			})
			c.log.Debugw("candidate flag", map[string]any{
				"site": facilityID, "rate": rate, "measured": measured, "leaks": len(leaks),
			})
		}
	} else {
		st.MissedLeaks += len(leaks)
		c.ctx.Series.AddMissedLeaks(name, t, len(leaks))
	}

	c.cursor += time.Duration(int(st.SurveyMinutes)) * time.Minute
	c.cursor += c.offsite()
	c.ctx.Series.AddSiteVisit(name, t)
	return nil
}
