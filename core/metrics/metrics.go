package metrics

import (
	"time"

	"github.com/kilianp07/automail/core/delivery"
)

// DeliveryEvent describes a single completed delivery.
type DeliveryEvent struct {
	Tick    int
	RobotID string
	Variant string
	Floor   int
	Delay   int
	Weight  int
	// Fee is the total charge, zero when Charged is false.
	Fee     float64
	Charged bool
	Time    time.Time
}

// DeliveryFromRecord converts a delivery record into a metrics event.
func DeliveryFromRecord(rec delivery.Record, at time.Time) DeliveryEvent {
	ev := DeliveryEvent{
		Tick:    rec.Tick,
		RobotID: rec.RobotID,
		Variant: rec.Variant,
		Floor:   rec.Item.DestinationFloor,
		Delay:   rec.Delay(),
		Weight:  rec.Item.Weight,
		Time:    at,
	}
	if rec.Fee != nil {
		ev.Fee = rec.Fee.TotalCost
		ev.Charged = true
	}
	return ev
}

// MetricsSink records deliveries for observability purposes.
type MetricsSink interface {
	RecordDelivery(ev DeliveryEvent) error
}

// StateChangeEvent captures a robot state transition.
type StateChangeEvent struct {
	Tick    int
	RobotID string
	From    string
	To      string
	Floor   int
	Time    time.Time
}

// StateChangeRecorder records robot state transitions.
type StateChangeRecorder interface {
	RecordStateChange(ev StateChangeEvent) error
}

// AllocationEvent records a robot leaving the mailroom with items.
type AllocationEvent struct {
	Tick    int
	RobotID string
	Items   int
	Time    time.Time
}

// AllocationRecorder records allocations made by the mail pool.
type AllocationRecorder interface {
	RecordAllocation(ev AllocationEvent) error
}

// TickSnapshot is the state of the engine at the end of a tick.
type TickSnapshot struct {
	Tick      int
	Pending   int
	Waiting   int
	Delivered int
	Time      time.Time
}

// TickRecorder records per-tick snapshots.
type TickRecorder interface {
	RecordTick(s TickSnapshot) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDelivery(DeliveryEvent) error       { return nil }
func (NopSink) RecordStateChange(StateChangeEvent) error { return nil }
func (NopSink) RecordAllocation(AllocationEvent) error   { return nil }
func (NopSink) RecordTick(TickSnapshot) error            { return nil }
