package sim

import (
	"fmt"

	"github.com/kilianp07/ldarsim/core/model"
)

// Registry stores the sites of a replicate in their load order together with
// the leaks attached to them.
type Registry struct {
	sites      []*model.Site
	index      map[string]int
	leaks      []*model.Leak
	byFacility map[string][]*model.Leak
}

// NewRegistry validates the sites and leaks and indexes leaks by facility.
// A leak referencing an unknown facility is rejected.
func NewRegistry(sites []*model.Site, leaks []*model.Leak) (*Registry, error) {
	r := &Registry{
		sites:      sites,
		index:      make(map[string]int, len(sites)),
		leaks:      leaks,
		byFacility: make(map[string][]*model.Leak),
	}
	for i, s := range sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[s.ID]; dup {
			return nil, fmt.Errorf("site %s: %w", s.ID, model.ErrDuplicateSite)
		}
		r.index[s.ID] = i
	}
	for _, l := range leaks {
		if err := l.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.index[l.FacilityID]; !ok {
			return nil, fmt.Errorf("leak %s references %s: %w", l.ID, l.FacilityID, model.ErrUnknownFacility)
		}
		r.byFacility[l.FacilityID] = append(r.byFacility[l.FacilityID], l)
	}
	return r, nil
}

// Sites returns the sites in registry order. The slice must not be reordered.
func (r *Registry) Sites() []*model.Site { return r.sites }

// Site looks up a site by facility id.
func (r *Registry) Site(id string) (*model.Site, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.sites[i], true
}

// Leaks returns every leak of the registry.
func (r *Registry) Leaks() []*model.Leak { return r.leaks }

// ActiveLeaks returns the active leaks of a facility in load order.
func (r *Registry) ActiveLeaks(facilityID string) []*model.Leak {
	var out []*model.Leak
	for _, l := range r.byFacility[facilityID] {
		if l.Active() {
			out = append(out, l)
		}
	}
	return out
}

// CheckLocations fails when a site lies outside the given grid.
func (r *Registry) CheckLocations(method string, g DeploymentGrid) error {
	nLon, nLat, _ := g.Dims()
	for _, s := range r.sites {
		if s.LonIndex >= nLon || s.LatIndex >= nLat {
			return fmt.Errorf("site %s (%d,%d) for %s grid %dx%d: %w",
				s.ID, s.LonIndex, s.LatIndex, method, nLon, nLat, model.ErrLocationOutOfGrid)
		}
	}
	return nil
}

// Clone deep-copies sites and leaks for an isolated replicate.
func (r *Registry) Clone() *Registry {
	sites := make([]*model.Site, len(r.sites))
	for i, s := range r.sites {
		sites[i] = s.Clone()
	}
	leaks := make([]*model.Leak, len(r.leaks))
	for i, l := range r.leaks {
		c := *l
		leaks[i] = &c
	}
	// the source registry already passed validation
	c, _ := NewRegistry(sites, leaks)
	return c
}
