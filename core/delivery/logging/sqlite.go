package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists logs to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS deliveries (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        tick INTEGER NOT NULL,
        robot_id TEXT NOT NULL,
        variant TEXT NOT NULL,
        floor INTEGER NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS deliveries_robot ON deliveries (robot_id, tick);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec LogRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	d := rec.Delivery
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO deliveries (tick, robot_id, variant, floor, record) VALUES (?, ?, ?, ?, ?)`,
		d.Tick, d.RobotID, d.Variant, d.Item.DestinationFloor, string(b))
	return err
}

// Query returns records matching q ordered by tick.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]LogRecord, error) {
	var args []any
	query := `SELECT record FROM deliveries WHERE 1=1`
	if q.RobotID != "" {
		query += ` AND robot_id = ?`
		args = append(args, q.RobotID)
	}
	if q.Variant != "" {
		query += ` AND variant = ?`
		args = append(args, q.Variant)
	}
	if q.FromTick > 0 {
		query += ` AND tick >= ?`
		args = append(args, q.FromTick)
	}
	if q.ToTick > 0 {
		query += ` AND tick <= ?`
		args = append(args, q.ToTick)
	}
	query += ` ORDER BY tick, id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []LogRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r LogRecord
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
