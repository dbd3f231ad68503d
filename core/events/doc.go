// Package events defines the engine events emitted on the event bus.
//
// Available event types:
//   - StateEvent: a robot changed state
//   - AllocationEvent: the mail pool loaded and dispatched a robot
//   - DeliveryEvent: a robot delivered an item
//   - TickEvent: the runner finished a tick
package events

// Event is any value published on the engine bus.
type Event interface{}
