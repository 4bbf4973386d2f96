package flags

import (
	"context"
	"time"

	"github.com/kilianp07/ldarsim/core/model"
)

// Batch is one day of candidate flags from one replicate, in the order the
// crews raised them.
type Batch struct {
	RunID     string
	Program   string
	Replicate int
	Timestep  int
	Date      time.Time
	Flags     []model.CandidateFlag
}

// Record is the flattened, serialisable form of a candidate flag.
type Record struct {
	RunID        string    `json:"run_id"`
	Program      string    `json:"program"`
	Replicate    int       `json:"replicate"`
	Timestep     int       `json:"timestep"`
	Date         time.Time `json:"date"`
	Method       string    `json:"method"`
	CrewID       string    `json:"crew_id"`
	FacilityID   string    `json:"facility_id"`
	LeakIDs      []string  `json:"leak_ids"`
	SiteRate     float64   `json:"site_rate"`
	MeasuredRate float64   `json:"measured_rate"`
	Venting      float64   `json:"venting"`
}

// Records flattens the batch.
func (b Batch) Records() []Record {
	out := make([]Record, 0, len(b.Flags))
	for _, f := range b.Flags {
		out = append(out, Record{
			RunID:        b.RunID,
			Program:      b.Program,
			Replicate:    b.Replicate,
			Timestep:     f.Timestep,
			Date:         f.Date,
			Method:       f.Method,
			CrewID:       f.CrewID,
			FacilityID:   f.FacilityID(),
			LeakIDs:      f.LeakIDs(),
			SiteRate:     f.SiteRate,
			MeasuredRate: f.MeasuredRate,
			Venting:      f.Venting,
		})
	}
	return out
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	Start      time.Time
	End        time.Time
	Program    string
	Method     string
	FacilityID string
	Replicate  *int
}

// Match reports whether r satisfies every filter of q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Date.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Date.After(q.End) {
		return false
	}
	if q.Program != "" && r.Program != q.Program {
		return false
	}
	if q.Method != "" && r.Method != q.Method {
		return false
	}
	if q.FacilityID != "" && r.FacilityID != q.FacilityID {
		return false
	}
	if q.Replicate != nil && r.Replicate != *q.Replicate {
		return false
	}
	return true
}

// Sink receives the candidate flags raised each day.
type Sink interface {
	Forward(ctx context.Context, b Batch) error
}

// Closer is implemented by sinks holding resources.
type Closer interface {
	Close() error
}

// LogStore persists Records and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
