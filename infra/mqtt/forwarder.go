package mqtt

import (
	"context"

	"github.com/kilianp07/automail/core/events"
	coremqtt "github.com/kilianp07/automail/core/mqtt"
	"github.com/kilianp07/automail/infra/logger"
	"github.com/kilianp07/automail/internal/eventbus"
)

// StartForwarder publishes delivery and state events from bus until ctx is
// canceled or the bus is closed. Publish failures are logged and skipped.
// The returned channel is closed when the forwarder exits.
func StartForwarder(ctx context.Context, bus *eventbus.EventBus, pub coremqtt.Publisher) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
		close(done)
		return done
	}
	log := logger.New("mqtt_forwarder")
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
				var err error
				switch e := ev.(type) {
				case events.DeliveryEvent:
					_, err = pub.PublishDelivery(e.Record)
				case events.StateEvent:
					_, err = pub.PublishState(e)
				}
				if err != nil {
					log.Warnf("forward %T: %v", ev, err)
				}
			}
		}
	}()
	return done
}
