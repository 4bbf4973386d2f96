package input

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/kilianp07/ldarsim/core/model"
)

// LoadSites reads the site table. Besides facility_ID, lon_index and
// lat_index it needs, per method m, the columns m_RS (required surveys per
// year) and m_time (minutes per visit). An optional m_since column seeds
// the time since the last survey.
func LoadSites(r io.Reader, methods []string) ([]*model.Site, error) {
	t, err := readTable("sites", r)
	if err != nil {
		return nil, err
	}
	cols := []string{"facility_ID", "lon_index", "lat_index"}
	for _, m := range methods {
		cols = append(cols, m+"_RS", m+"_time")
	}
	if err := t.require(cols...); err != nil {
		return nil, err
	}

	sites := make([]*model.Site, 0, len(t.rows))
	for i := range t.rows {
		id := t.str(i, "facility_ID")
		if id == "" {
			return nil, fmt.Errorf("sites line %d: empty facility_ID", i+2)
		}
		lon, err := t.int(i, "lon_index")
		if err != nil {
			return nil, err
		}
		lat, err := t.int(i, "lat_index")
		if err != nil {
			return nil, err
		}
		s := model.NewSite(id, lon, lat)
		for _, m := range methods {
			st := s.Method(m)
			if st.RequiredSurveys, err = t.int(i, m+"_RS"); err != nil {
				return nil, err
			}
			if st.SurveyMinutes, err = t.float(i, m+"_time"); err != nil {
				return nil, err
			}
			if t.has(m+"_since") && t.str(i, m+"_since") != "" {
				if st.TimeSinceLastSurvey, err = t.int(i, m+"_since"); err != nil {
					return nil, err
				}
			}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("sites line %d: %w", i+2, err)
		}
		sites = append(sites, s)
	}
	return sites, nil
}

// LoadSitesFile reads the site table at path.
func LoadSitesFile(path string, methods []string) ([]*model.Site, error) {
	var sites []*model.Site
	err := openFile(path, func(r io.Reader) error {
		var err error
		sites, err = LoadSites(r, methods)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return sites, nil
}
