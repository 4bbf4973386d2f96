package results

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/ldarsim/core/montecarlo"
)

// Status of a stored replicate.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Record is the stored summary of one replicate.
type Record struct {
	RunID          string
	Program        string
	Replicate      int
	Seed           uint64
	Status         string
	Error          string
	Duration       time.Duration
	TotalCost      float64
	SitesVisited   int
	MissedLeaks    int
	CandidateFlags int
	EmissionsKg    float64
	RecordedAt     time.Time
}

// FromOutcome converts a driver outcome.
func FromOutcome(runID string, o montecarlo.Outcome, at time.Time) Record {
	r := Record{
		RunID:      runID,
		Program:    o.Program,
		Replicate:  o.Index,
		Seed:       o.Seed,
		Status:     StatusCompleted,
		Duration:   o.Duration,
		RecordedAt: at.UTC(),
	}
	if o.Failed() {
		r.Status = StatusFailed
		r.Error = o.Err.Error()
		return r
	}
	if o.Result != nil {
		t := o.Result.Totals
		r.TotalCost = t.TotalCost
		r.SitesVisited = t.SitesVisited
		r.MissedLeaks = t.MissedLeaks
		r.CandidateFlags = t.CandidateFlags
		r.EmissionsKg = t.EmissionsKg
	}
	return r
}

// SQLiteStore persists replicate records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("results: path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("results: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS replicate_results (
        run_id TEXT,
        program TEXT,
        replicate INTEGER,
        seed TEXT,
        status TEXT,
        error TEXT,
        duration_ms INTEGER,
        total_cost REAL,
        sites_visited INTEGER,
        missed_leaks INTEGER,
        candidate_flags INTEGER,
        emissions_kg REAL,
        recorded_at INTEGER,
        PRIMARY KEY(run_id, program, replicate)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("results: schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the record of a replicate.
func (s *SQLiteStore) Save(r Record) error {
	_, err := s.db.Exec(`INSERT INTO replicate_results (run_id, program, replicate, seed, status, error,
            duration_ms, total_cost, sites_visited, missed_leaks, candidate_flags, emissions_kg, recorded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, program, replicate) DO UPDATE SET
            seed = excluded.seed,
            status = excluded.status,
            error = excluded.error,
            duration_ms = excluded.duration_ms,
            total_cost = excluded.total_cost,
            sites_visited = excluded.sites_visited,
            missed_leaks = excluded.missed_leaks,
            candidate_flags = excluded.candidate_flags,
            emissions_kg = excluded.emissions_kg,
            recorded_at = excluded.recorded_at`,
		r.RunID, r.Program, r.Replicate, fmt.Sprint(r.Seed), r.Status, r.Error,
		r.Duration.Milliseconds(), r.TotalCost, r.SitesVisited, r.MissedLeaks, r.CandidateFlags,
		r.EmissionsKg, r.RecordedAt.UnixMilli())
	return err
}

// SaveOutcomes stores every outcome of a batch.
func (s *SQLiteStore) SaveOutcomes(runID string, outcomes []montecarlo.Outcome, at time.Time) error {
	var errs []error
	for _, o := range outcomes {
		if err := s.Save(FromOutcome(runID, o, at)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.ID, err))
		}
	}
	return errors.Join(errs...)
}

// Query returns the records of a run ordered by program and replicate.
func (s *SQLiteStore) Query(runID string) ([]Record, error) {
	rows, err := s.db.Query(`SELECT run_id, program, replicate, seed, status, error, duration_ms,
            total_cost, sites_visited, missed_leaks, candidate_flags, emissions_kg, recorded_at
        FROM replicate_results WHERE run_id = ? ORDER BY program, replicate`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var r Record
		var seed string
		var durMS, at int64
		if err := rows.Scan(&r.RunID, &r.Program, &r.Replicate, &seed, &r.Status, &r.Error, &durMS,
			&r.TotalCost, &r.SitesVisited, &r.MissedLeaks, &r.CandidateFlags, &r.EmissionsKg, &at); err != nil {
			return nil, err
		}
		if _, err := fmt.Sscan(seed, &r.Seed); err != nil {
			return nil, fmt.Errorf("results: seed %q: %w", seed, err)
		}
		r.Duration = time.Duration(durMS) * time.Millisecond
		r.RecordedAt = time.UnixMilli(at).UTC()
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
