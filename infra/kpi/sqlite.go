// Package kpi keeps the headline figures of every simulation run so that
// runs with different seeds or rosters can be compared.
package kpi

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kilianp07/automail/simulation"
)

// Record is the summary of one run.
type Record struct {
	RunID        string    `json:"run_id"`
	FinishedAt   time.Time `json:"finished_at"`
	Seed         uint64    `json:"seed"`
	Robots       int       `json:"robots"`
	Generated    int       `json:"generated"`
	Delivered    int       `json:"delivered"`
	FinalTick    int       `json:"final_tick"`
	Score        float64   `json:"score"`
	DelayMean    float64   `json:"delay_mean"`
	DelayP95     float64   `json:"delay_p95"`
	TotalCharges float64   `json:"total_charges"`
}

// FromReport builds the record of a finished run.
func FromReport(runID string, seed uint64, at time.Time, r simulation.Report) Record {
	robots := 0
	for _, n := range r.Robots {
		robots += n
	}
	return Record{
		RunID:        runID,
		FinishedAt:   at.UTC(),
		Seed:         seed,
		Robots:       robots,
		Generated:    r.Generated,
		Delivered:    r.Delivered,
		FinalTick:    r.FinalTick,
		Score:        r.Score,
		DelayMean:    r.DelayMean,
		DelayP95:     r.DelayP95,
		TotalCharges: r.TotalCharges(),
	}
}

// SQLiteStore persists run records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS runs (
        run_id TEXT PRIMARY KEY,
        finished_at INTEGER,
        seed INTEGER,
        robots INTEGER,
        generated INTEGER,
        delivered INTEGER,
        final_tick INTEGER,
        score REAL,
        delay_mean REAL,
        delay_p95 REAL,
        total_charges REAL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts the record, replacing a previous record with the same run id.
func (s *SQLiteStore) Add(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (run_id, finished_at, seed, robots, generated,
            delivered, final_tick, score, delay_mean, delay_p95, total_charges)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id) DO UPDATE SET
            finished_at = excluded.finished_at,
            delivered = excluded.delivered,
            final_tick = excluded.final_tick,
            score = excluded.score,
            delay_mean = excluded.delay_mean,
            delay_p95 = excluded.delay_p95,
            total_charges = excluded.total_charges`,
		r.RunID, r.FinishedAt.UnixMilli(), int64(r.Seed), r.Robots, r.Generated,
		r.Delivered, r.FinalTick, r.Score, r.DelayMean, r.DelayP95, r.TotalCharges)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.RunID, err)
	}
	return nil
}

// Query returns the runs finished in [start,end], oldest first. A zero end
// means no upper bound.
func (s *SQLiteStore) Query(ctx context.Context, start, end time.Time) ([]Record, error) {
	upper := int64(1<<63 - 1)
	if !end.IsZero() {
		upper = end.UnixMilli()
	}
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, finished_at, seed, robots, generated, delivered,
            final_tick, score, delay_mean, delay_p95, total_charges
        FROM runs WHERE finished_at >= ? AND finished_at <= ? ORDER BY finished_at`,
		start.UnixMilli(), upper)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var r Record
		var ts, seed int64
		if err := rows.Scan(&r.RunID, &ts, &seed, &r.Robots, &r.Generated, &r.Delivered,
			&r.FinalTick, &r.Score, &r.DelayMean, &r.DelayP95, &r.TotalCharges); err != nil {
			return nil, err
		}
		r.FinishedAt = time.UnixMilli(ts).UTC()
		r.Seed = uint64(seed)
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
