package mailpool

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/kilianp07/automail/core/events"
	"github.com/kilianp07/automail/core/logger"
	"github.com/kilianp07/automail/core/model"
	"github.com/kilianp07/automail/internal/eventbus"
)

// Carrier is a robot as seen by the pool.
type Carrier interface {
	ID() string
	// Load takes items from the front of pending according to the robot's
	// loading rule and returns how many it took. Items taken before an error
	// stay with the robot.
	Load(pending []model.MailItem) (int, error)
	// Dispatch signals the robot that it may leave the mailroom.
	Dispatch()
}

// Pool holds mail waiting for delivery and robots waiting for mail.
type Pool struct {
	pending []model.MailItem
	waiting []Carrier
	clock   model.Clock
	log     logger.Logger
	events  eventbus.Publisher[events.Event]
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(l logger.Logger) Option { return func(p *Pool) { p.log = l } }

// WithClock sets the clock used to timestamp logs and events.
func WithClock(c model.Clock) Option { return func(p *Pool) { p.clock = c } }

// WithEvents publishes allocation events on bus.
func WithEvents(bus eventbus.Publisher[events.Event]) Option {
	return func(p *Pool) { p.events = bus }
}

// New creates an empty Pool.
func New(opts ...Option) *Pool {
	p := &Pool{log: logger.Nop{}, clock: model.StaticClock(0)}
	for _, o := range opts {
		o(p)
	}
	return p
}

// AddToPool inserts item keeping pending mail sorted by destination floor,
// highest first. Items with equal floors keep their arrival order.
func (p *Pool) AddToPool(item model.MailItem) {
	p.pending = append(p.pending, item)
	slices.SortStableFunc(p.pending, func(a, b model.MailItem) int {
		return cmp.Compare(b.DestinationFloor, a.DestinationFloor)
	})
}

// RegisterWaiting queues a robot that is back at the mailroom and empty.
// A robot already queued is not queued twice.
func (p *Pool) RegisterWaiting(c Carrier) {
	for _, w := range p.waiting {
		if w.ID() == c.ID() {
			p.log.Warnf("robot %s already waiting, ignoring duplicate registration", c.ID())
			return
		}
	}
	p.waiting = append(p.waiting, c)
}

// LoadItemsToRobot loads every waiting robot, in the order they arrived, from
// the front of the pending queue and dispatches it. It stops at the first
// load error, leaving the remaining robots waiting for the next pass.
func (p *Pool) LoadItemsToRobot() error {
	i := 0
	for i < len(p.waiting) {
		c := p.waiting[i]
		if len(p.pending) == 0 {
			i++
			continue
		}
		n, err := c.Load(slices.Clone(p.pending))
		taken := p.take(n)
		if err != nil {
			return fmt.Errorf("load robot %s: %w", c.ID(), err)
		}
		c.Dispatch()
		p.waiting = slices.Delete(p.waiting, i, i+1)
		p.allocated(c, taken)
	}
	return nil
}

func (p *Pool) take(n int) []model.MailItem {
	n = min(max(n, 0), len(p.pending))
	taken := slices.Clone(p.pending[:n])
	p.pending = slices.Delete(p.pending, 0, n)
	return taken
}

func (p *Pool) allocated(c Carrier, items []model.MailItem) {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	p.log.Debugw("robot dispatched", map[string]any{
		"tick":  p.clock.Now(),
		"robot": c.ID(),
		"items": ids,
	})
	if p.events != nil {
		p.events.Publish(events.AllocationEvent{Tick: p.clock.Now(), RobotID: c.ID(), ItemIDs: ids})
	}
}

// Pending returns a copy of the pending queue in allocation order.
func (p *Pool) Pending() []model.MailItem { return slices.Clone(p.pending) }

// PendingCount returns the number of items waiting in the pool.
func (p *Pool) PendingCount() int { return len(p.pending) }

// WaitingCount returns the number of robots waiting for mail.
func (p *Pool) WaitingCount() int { return len(p.waiting) }

// WaitingIDs returns the ids of waiting robots in FIFO order.
func (p *Pool) WaitingIDs() []string {
	ids := make([]string, 0, len(p.waiting))
	for _, w := range p.waiting {
		ids = append(ids, w.ID())
	}
	return ids
}
