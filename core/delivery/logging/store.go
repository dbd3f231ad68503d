// Package logging persists delivery records and lets operators query them
// after a run. Stores share the LogStore interface; StoreSink adapts any of
// them into a delivery.Sink.
package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/automail/core/delivery"
)

// LogRecord is a delivery as written to a log store.
type LogRecord struct {
	LoggedAt time.Time       `json:"logged_at"`
	Delivery delivery.Record `json:"delivery"`
}

// LogQuery defines filters for retrieving records. Zero values match
// everything; tick bounds are inclusive.
type LogQuery struct {
	RobotID  string
	Variant  string
	FromTick int
	ToTick   int
}

// Match reports whether rec satisfies q.
func (q LogQuery) Match(rec LogRecord) bool {
	d := rec.Delivery
	if q.RobotID != "" && d.RobotID != q.RobotID {
		return false
	}
	if q.Variant != "" && d.Variant != q.Variant {
		return false
	}
	if q.FromTick > 0 && d.Tick < q.FromTick {
		return false
	}
	if q.ToTick > 0 && d.Tick > q.ToTick {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// StoreSink writes every delivery to a LogStore.
type StoreSink struct {
	store LogStore
	now   func() time.Time
}

// NewStoreSink returns a delivery.Sink backed by store.
func NewStoreSink(store LogStore) *StoreSink {
	return &StoreSink{store: store, now: time.Now}
}

// Deliver implements delivery.Sink.
func (s *StoreSink) Deliver(ctx context.Context, rec delivery.Record) error {
	if err := s.store.Append(ctx, LogRecord{LoggedAt: s.now(), Delivery: rec}); err != nil {
		return fmt.Errorf("append delivery log: %w", err)
	}
	return nil
}

// Config selects and configures a store.
type Config struct {
	// Backend is one of none, jsonl, rotating or sqlite.
	Backend    string `json:"backend"`
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

// SetDefaults fills in the file location and rotation limits.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "deliveries.db"
		default:
			c.Path = "deliveries.jsonl"
		}
	}
	if c.Backend == "rotating" && c.MaxSizeMB == 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "none":
		return nil
	case "jsonl", "rotating", "sqlite":
	default:
		return fmt.Errorf("unknown delivery log backend %q", c.Backend)
	}
	if c.Path == "" {
		return fmt.Errorf("delivery log path is required")
	}
	if c.MaxSizeMB < 0 || c.MaxBackups < 0 || c.MaxAgeDays < 0 {
		return fmt.Errorf("delivery log rotation limits must not be negative")
	}
	return nil
}

// Open creates the store selected by cfg. It returns nil for the none backend.
func Open(cfg Config) (LogStore, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "rotating":
		return NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown delivery log backend %q", cfg.Backend)
	}
}
