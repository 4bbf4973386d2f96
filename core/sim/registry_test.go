package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ldarsim/core/model"
)

func TestNewRegistryRejectsUnknownFacility(t *testing.T) {
	sites := []*model.Site{model.NewSite("S1", 0, 0)}
	leaks := []*model.Leak{{ID: "L1", FacilityID: "S9", Rate: 1}}
	_, err := NewRegistry(sites, leaks)
	assert.ErrorIs(t, err, model.ErrUnknownFacility)
}

func TestNewRegistryRejectsDuplicateSite(t *testing.T) {
	sites := []*model.Site{model.NewSite("S1", 0, 0), model.NewSite("S1", 1, 0)}
	_, err := NewRegistry(sites, nil)
	assert.ErrorIs(t, err, model.ErrDuplicateSite)
}

func TestNewRegistryRejectsNegativeLocation(t *testing.T) {
	_, err := NewRegistry([]*model.Site{model.NewSite("S1", -1, 0)}, nil)
	assert.ErrorIs(t, err, model.ErrLocationOutOfGrid)
}

func TestNewRegistryRejectsNegativeTimeSinceSurvey(t *testing.T) {
	s := model.NewSite("S1", 0, 0)
	s.Method("OGI").TimeSinceLastSurvey = -30
	_, err := NewRegistry([]*model.Site{s}, nil)
	assert.ErrorContains(t, err, "negative time since last survey")
}

func TestRegistryActiveLeaks(t *testing.T) {
	sites := []*model.Site{model.NewSite("S1", 0, 0), model.NewSite("S2", 1, 0)}
	leaks := []*model.Leak{
		{ID: "L1", FacilityID: "S1", Rate: 1},
		{ID: "L2", FacilityID: "S2", Rate: 2},
		{ID: "L3", FacilityID: "S1", Rate: 3, Status: model.LeakRepaired},
		{ID: "L4", FacilityID: "S1", Rate: 4},
	}
	r, err := NewRegistry(sites, leaks)
	require.NoError(t, err)
	active := r.ActiveLeaks("S1")
	require.Len(t, active, 2)
	assert.Equal(t, "L1", active[0].ID)
	assert.Equal(t, "L4", active[1].ID)
	assert.Empty(t, r.ActiveLeaks("S3"))

	s, ok := r.Site("S2")
	require.True(t, ok)
	assert.Equal(t, 1, s.LonIndex)
}

func TestRegistryCheckLocations(t *testing.T) {
	r, err := NewRegistry([]*model.Site{model.NewSite("S1", 3, 0)}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, r.CheckLocations("truck", NewBoolGrid(2, 2, 1)), model.ErrLocationOutOfGrid)
	assert.NoError(t, r.CheckLocations("truck", NewBoolGrid(4, 1, 1)))
}

func TestRegistryCloneIsolated(t *testing.T) {
	s := model.NewSite("S1", 0, 0)
	s.Method("truck").TimeSinceLastSurvey = 7
	r, err := NewRegistry([]*model.Site{s}, []*model.Leak{{ID: "L1", FacilityID: "S1", Rate: 1}})
	require.NoError(t, err)

	c := r.Clone()
	c.Sites()[0].Method("truck").TimeSinceLastSurvey = 0
	c.Leaks()[0].Status = model.LeakRepaired

	assert.Equal(t, 7, r.Sites()[0].Method("truck").TimeSinceLastSurvey)
	assert.True(t, r.Leaks()[0].Active())
	assert.Empty(t, c.ActiveLeaks("S1"))
}
