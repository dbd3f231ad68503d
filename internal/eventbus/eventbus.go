package eventbus

import (
	"context"

	"github.com/kilianp07/automail/core/events"
)

// Publisher accepts events of type T.
type Publisher[T any] interface {
	Publish(T)
}

// EventBus is the bus carrying engine events.
type EventBus = TypedBus[events.Event]

// New creates an engine event bus whose subscribers buffer up to size events.
func New(size int) *EventBus { return NewTypedWithBuffer[events.Event](size) }

// Consume subscribes to b and calls fn for every event until ctx is done or
// the bus is closed.
func Consume[T any](ctx context.Context, b *TypedBus[T], fn func(T)) {
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fn(ev)
		case <-ctx.Done():
			return
		}
	}
}
