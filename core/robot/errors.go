package robot

import "errors"

var (
	// ErrItemTooHeavy is returned when a robot is asked to carry an item
	// heavier than model.MaxItemWeight.
	ErrItemTooHeavy = errors.New("item too heavy")
	// ErrExcessiveDelivery signals that a robot delivered more items in one
	// dispatch cycle than it can carry. It indicates a bug in the caller and
	// must abort the simulation.
	ErrExcessiveDelivery = errors.New("excessive delivery")
)
