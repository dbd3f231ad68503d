package metrics

import (
	"context"
	"time"

	"github.com/kilianp07/automail/core/events"
	coremetrics "github.com/kilianp07/automail/core/metrics"
	"github.com/kilianp07/automail/infra/logger"
	"github.com/kilianp07/automail/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled or the bus is closed. The returned
// channel is closed once the collector has exited.
func StartEventCollector(ctx context.Context, bus *eventbus.EventBus, sink coremetrics.MetricsSink) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	log := logger.New("metrics-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if err := record(sink, ev); err != nil {
					log.Warnf("record %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}

func record(sink coremetrics.MetricsSink, ev events.Event) error {
	now := time.Now()
	switch e := ev.(type) {
	case events.DeliveryEvent:
		return sink.RecordDelivery(coremetrics.DeliveryFromRecord(e.Record, now))
	case events.StateEvent:
		if r, ok := sink.(coremetrics.StateChangeRecorder); ok {
			return r.RecordStateChange(coremetrics.StateChangeEvent{
				Tick: e.Tick, RobotID: e.RobotID, From: e.From, To: e.To, Floor: e.Floor, Time: now,
			})
		}
	case events.AllocationEvent:
		if r, ok := sink.(coremetrics.AllocationRecorder); ok {
			return r.RecordAllocation(coremetrics.AllocationEvent{
				Tick: e.Tick, RobotID: e.RobotID, Items: len(e.ItemIDs), Time: now,
			})
		}
	case events.TickEvent:
		if r, ok := sink.(coremetrics.TickRecorder); ok {
			return r.RecordTick(coremetrics.TickSnapshot{
				Tick: e.Tick, Pending: e.Pending, Waiting: e.Waiting, Delivered: e.Delivered, Time: now,
			})
		}
	}
	return nil
}
