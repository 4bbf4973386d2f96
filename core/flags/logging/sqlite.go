package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/ldarsim/core/flags"
)

// SQLiteStore persists flag records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Replicates write concurrently; a single connection serialises them.
	db.SetMaxOpenConns(1)
	schema := `CREATE TABLE IF NOT EXISTS candidate_flags (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT,
        program TEXT,
        replicate INTEGER,
        timestep INTEGER,
        ts INTEGER,
        method TEXT,
        facility_id TEXT,
        record TEXT
    );`
	index := `CREATE INDEX IF NOT EXISTS candidate_flags_program ON candidate_flags(program, replicate, timestep);`
	for _, stmt := range []string{schema, index} {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec flags.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO candidate_flags (run_id, program, replicate, timestep, ts, method, facility_id, record)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Program, rec.Replicate, rec.Timestep, rec.Date.Unix(), rec.Method, rec.FacilityID, string(b))
	return err
}

// Query returns records matching q ordered by program, replicate and timestep.
func (s *SQLiteStore) Query(ctx context.Context, q flags.Query) ([]flags.Record, error) {
	var args []any
	query := `SELECT record FROM candidate_flags WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.Unix())
	}
	if q.Program != "" {
		query += ` AND program = ?`
		args = append(args, q.Program)
	}
	if q.Method != "" {
		query += ` AND method = ?`
		args = append(args, q.Method)
	}
	if q.FacilityID != "" {
		query += ` AND facility_id = ?`
		args = append(args, q.FacilityID)
	}
	if q.Replicate != nil {
		query += ` AND replicate = ?`
		args = append(args, *q.Replicate)
	}
	query += ` ORDER BY program, replicate, timestep, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []flags.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r flags.Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
