package crew

import (
	"sort"

	"github.com/kilianp07/ldarsim/core/model"
)

// rankSites returns registry indices ordered by time since last survey for
// method, most neglected first. Ties keep registry order.
func rankSites(sites []*model.Site, method string) []int {
	order := make([]int, len(sites))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sites[order[a]].Method(method).TimeSinceLastSurvey > sites[order[b]].Method(method).TimeSinceLastSurvey
	})
	return order
}

// ChooseSite scans sites by neglect rank and selects the first one that is
// ripe, below its annual quota and weather eligible. The selected site's
// counters are updated. When the most neglected unattempted site is not
// ripe, no other site can be, so the crew's day ends.
func (c *Crew) ChooseSite() (string, bool, *model.Site) {
	sites := c.ctx.Registry.Sites()
	name := c.method.Name
	t := c.ctx.Clock.Timestep()

	for _, i := range rankSites(sites, name) {
		site := sites[i]
		st := site.Method(name)
		if st.AttemptedToday {
			continue
		}
		if st.TimeSinceLastSurvey < c.method.MinInterval {
			c.cursor = day
			return "", false, nil
		}
		if st.SurveysDoneThisYear >= st.RequiredSurveys {
			continue
		}
		if !c.grid.Eligible(site.LonIndex, site.LatIndex, t) {
			st.AttemptedToday = true
			continue
		}
		st.SurveysConducted++
		st.SurveysDoneThisYear++
		st.TimeSinceLastSurvey = 0
		// keeps a second crew of the method, or a repeated call, off this site today
		st.AttemptedToday = true
		return site.ID, true, site
	}
	return "", false, nil
}
