package delivery

import (
	"context"

	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/model"
)

// Record describes one completed delivery.
type Record struct {
	Tick    int            `json:"tick"`
	RobotID string         `json:"robot_id"`
	Variant string         `json:"variant"`
	Item    model.MailItem `json:"item"`
	// Fee is nil when fee charging is disabled.
	Fee *fee.Breakdown `json:"fee,omitempty"`
}

// Delay returns the number of ticks between arrival and delivery.
func (r Record) Delay() int { return r.Tick - r.Item.ArrivalTime }

// Annotation renders the fee annotation appended to delivery log lines.
func (r Record) Annotation() string {
	if r.Fee == nil {
		return ""
	}
	return r.Fee.String()
}

// Sink receives completed deliveries. Deliver is called synchronously from
// the robot state machine; an error aborts the simulation.
type Sink interface {
	Deliver(ctx context.Context, rec Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, rec Record) error

func (f SinkFunc) Deliver(ctx context.Context, rec Record) error { return f(ctx, rec) }

// NopSink discards deliveries.
type NopSink struct{}

func (NopSink) Deliver(context.Context, Record) error { return nil }

// MultiSink forwards deliveries to several sinks in order.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink skipping nil entries.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.Sinks = append(m.Sinks, s)
		}
	}
	return m
}

// Deliver forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) Deliver(ctx context.Context, rec Record) error {
	for _, s := range m.Sinks {
		if err := s.Deliver(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
