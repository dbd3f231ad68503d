package robot

import (
	"context"
	"fmt"
	"slices"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/events"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/logger"
	"github.com/kilianp07/automail/core/mailpool"
	"github.com/kilianp07/automail/core/model"
	"github.com/kilianp07/automail/internal/eventbus"
)

// Registrar accepts robots returning empty to the mailroom.
type Registrar interface {
	RegisterWaiting(c mailpool.Carrier)
}

// Env holds the collaborators shared by every robot of a fleet.
type Env struct {
	Building model.Building
	Pool     Registrar
	Sink     delivery.Sink
	Clock    model.Clock
	// Fees is nil when fee charging is disabled.
	Fees   *fee.Calculator
	Log    logger.Logger
	Events eventbus.Publisher[events.Event]
}

// Robot delivers mail between the mailroom and destination floors.
type Robot struct {
	id    string
	group *Group
	env   Env

	state            State
	currentFloor     int
	destinationFloor int
	hand             *model.MailItem
	tube             []model.MailItem

	dispatchRequested bool
	deliveryCounter   int
}

// New creates a robot of the group's variant with the id prefix of the
// variant followed by index. The robot starts RETURNING at the mailroom and
// joins g.
func New(index int, g *Group, env Env) *Robot {
	if env.Log == nil {
		env.Log = logger.Nop{}
	}
	if env.Clock == nil {
		env.Clock = model.StaticClock(0)
	}
	if env.Sink == nil {
		env.Sink = delivery.NopSink{}
	}
	g.robots++
	return &Robot{
		id:           fmt.Sprintf("%s%d", g.variant.Prefix(), index),
		group:        g,
		env:          env,
		state:        Returning,
		currentFloor: env.Building.MailroomFloor(),
	}
}

// Operate advances the robot by one tick.
func (r *Robot) Operate(ctx context.Context) error {
	if err := r.step(ctx); err != nil {
		return err
	}
	if r.state.operating() {
		r.group.operatingTime++
	}
	return nil
}

func (r *Robot) step(ctx context.Context) error {
	switch r.state {
	case Returning:
		mailroom := r.env.Building.MailroomFloor()
		if r.currentFloor != mailroom {
			r.moveTowards(mailroom)
			return nil
		}
		r.env.Pool.RegisterWaiting(r)
		r.changeState(Waiting)
		// A robot arriving at the mailroom may leave again in the same tick.
		return r.step(ctx)
	case Waiting:
		if r.IsEmpty() || !r.dispatchRequested {
			return nil
		}
		r.dispatchRequested = false
		r.deliveryCounter = 0
		if r.group.variant.HasHand() && r.hand == nil {
			r.pullIntoHand()
		}
		r.destinationFloor = r.currentItem().DestinationFloor
		r.changeState(Delivering)
		return nil
	case Delivering:
		if r.currentFloor != r.destinationFloor {
			r.moveTowards(r.destinationFloor)
			return nil
		}
		return r.deliver(ctx)
	}
	return nil
}

func (r *Robot) deliver(ctx context.Context) error {
	item := r.currentItem()
	if r.group.variant.HasHand() {
		r.hand = nil
	} else {
		// the current item of a bulk robot is always the head of its tube
		r.tube = slices.Delete(r.tube, 0, 1)
	}

	rec := delivery.Record{
		Tick:    r.env.Clock.Now(),
		RobotID: r.id,
		Variant: r.group.variant.String(),
		Item:    item,
	}
	if r.env.Fees != nil {
		b := r.env.Fees.Charge(ctx, r.destinationFloor, r.group.variant.BaseRate(), r.group.AverageOperatingTime())
		rec.Fee = &b
	}
	if err := r.env.Sink.Deliver(ctx, rec); err != nil {
		return fmt.Errorf("robot %s deliver %s: %w", r.id, item.ID, err)
	}

	r.deliveryCounter++
	if capacity := r.group.variant.Capacity(); r.deliveryCounter > capacity {
		return fmt.Errorf("robot %s delivered %d items with capacity %d: %w",
			r.id, r.deliveryCounter, capacity, ErrExcessiveDelivery)
	}

	if len(r.tube) == 0 {
		r.changeState(Returning)
		return nil
	}
	if r.group.variant.HasHand() {
		r.pullIntoHand()
	}
	r.destinationFloor = r.currentItem().DestinationFloor
	r.changeState(Delivering)
	return nil
}

// currentItem returns the item being delivered: the hand for hand-carrying
// variants, the head of the tube otherwise.
func (r *Robot) currentItem() model.MailItem {
	if r.hand != nil {
		return *r.hand
	}
	return r.tube[0]
}

func (r *Robot) pullIntoHand() {
	next := r.tube[0]
	r.tube = slices.Delete(r.tube, 0, 1)
	r.hand = &next
}

// moveTowards moves at most Speed floors toward destination without
// overshooting it.
func (r *Robot) moveTowards(destination int) {
	speed := r.group.variant.Speed()
	dist := destination - r.currentFloor
	switch {
	case dist >= -speed && dist <= speed:
		r.currentFloor = destination
	case dist > 0:
		r.currentFloor += speed
	default:
		r.currentFloor -= speed
	}
}

func (r *Robot) changeState(next State) {
	prev := r.state
	r.state = next
	tick := r.env.Clock.Now()
	if prev != next {
		r.env.Log.Debugw(fmt.Sprintf("T: %3d > %7s changed from %s to %s", tick, r.idTube(), prev, next),
			map[string]any{"tick": tick, "robot": r.id, "from": prev.String(), "to": next.String()})
		if r.env.Events != nil {
			r.env.Events.Publish(events.StateEvent{
				Tick: tick, RobotID: r.id, From: prev.String(), To: next.String(), Floor: r.currentFloor,
			})
		}
	}
	if next == Delivering {
		r.env.Log.Debugf("T: %3d > %7s-> [%s]", tick, r.idTube(), r.currentItem())
	}
}

func (r *Robot) idTube() string { return fmt.Sprintf("%s(%1d)", r.id, len(r.tube)) }

// Dispatch marks the robot ready to leave the mailroom.
func (r *Robot) Dispatch() { r.dispatchRequested = true }

// IsEmpty reports whether the robot holds no item.
func (r *Robot) IsEmpty() bool { return r.hand == nil && len(r.tube) == 0 }

func (r *Robot) ID() string            { return r.id }
func (r *Robot) Variant() Variant      { return r.group.variant }
func (r *Robot) Group() *Group         { return r.group }
func (r *Robot) State() State          { return r.state }
func (r *Robot) CurrentFloor() int     { return r.currentFloor }
func (r *Robot) DestinationFloor() int { return r.destinationFloor }
func (r *Robot) DeliveryCounter() int  { return r.deliveryCounter }

// DispatchRequested reports whether the pool dispatched the robot and it has
// not left yet.
func (r *Robot) DispatchRequested() bool { return r.dispatchRequested }

// Hand returns a copy of the item in hand, if any.
func (r *Robot) Hand() (model.MailItem, bool) {
	if r.hand == nil {
		return model.MailItem{}, false
	}
	return *r.hand, true
}

// Tube returns a copy of the tube contents.
func (r *Robot) Tube() []model.MailItem { return slices.Clone(r.tube) }

// Status is a point-in-time view of a robot.
type Status struct {
	ID          string `json:"id"`
	Variant     string `json:"variant"`
	State       string `json:"state"`
	Floor       int    `json:"floor"`
	Destination int    `json:"destination"`
	Items       int    `json:"items"`
}

// Status returns the robot's current status.
func (r *Robot) Status() Status {
	items := len(r.tube)
	if r.hand != nil {
		items++
	}
	return Status{
		ID:          r.id,
		Variant:     r.group.variant.String(),
		State:       r.state.String(),
		Floor:       r.currentFloor,
		Destination: r.destinationFloor,
		Items:       items,
	}
}
