package simulation

import (
	"context"
	"errors"
	"fmt"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/events"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/logger"
	"github.com/kilianp07/automail/core/mailpool"
	"github.com/kilianp07/automail/core/model"
	"github.com/kilianp07/automail/core/robot"
	"github.com/kilianp07/automail/internal/eventbus"
)

var (
	// ErrMaxTicks is returned when mail is still undelivered after the
	// configured number of ticks.
	ErrMaxTicks = errors.New("max ticks reached before all mail was delivered")
	// ErrUnableToComplete wraps errors that stop the simulation before every
	// item is delivered.
	ErrUnableToComplete = errors.New("simulation unable to complete")
)

// Deps are the collaborators of a run. Every field is optional.
type Deps struct {
	// Fees supplies service fees when fee charging is enabled. Nil charges
	// no service fee.
	Fees fee.ServiceFeeSource
	// Sinks receive every delivery after the tracker accepted it.
	Sinks  []delivery.Sink
	Events *eventbus.EventBus
	Log    logger.Logger
}

// Runner executes one simulation run.
type Runner struct {
	cfg     Config
	log     logger.Logger
	events  *eventbus.EventBus
	clock   *Clock
	tracker *Tracker
	auto    *Automail
	mail    []model.MailItem
}

// NewRunner validates cfg, generates the mail and builds the fleet.
func NewRunner(cfg Config, deps Deps) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid simulation config: %w", err)
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop{}
	}
	mail, err := NewGenerator(cfg).Generate()
	if err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, log: log, events: deps.Events, clock: NewClock(), tracker: NewTracker(log), mail: mail}

	sinks := append([]delivery.Sink{r.tracker}, deps.Sinks...)
	poolOpts := []mailpool.Option{mailpool.WithLogger(log), mailpool.WithClock(r.clock)}
	env := robot.Env{
		Building: model.FixedBuilding{Floors: cfg.Floors, Mailroom: cfg.MailroomFloor},
		Clock:    r.clock,
		Log:      log,
	}
	if cfg.ChargeFees {
		env.Fees = fee.NewCalculator(deps.Fees)
	}
	if deps.Events != nil {
		bus := deps.Events
		env.Events = bus
		poolOpts = append(poolOpts, mailpool.WithEvents(bus))
		sinks = append(sinks, delivery.SinkFunc(func(_ context.Context, rec delivery.Record) error {
			bus.Publish(events.DeliveryEvent{Record: rec})
			return nil
		}))
	}
	env.Sink = delivery.NewMultiSink(sinks...)
	r.auto = NewAutomail(cfg.Robots, mailpool.New(poolOpts...), env)
	return r, nil
}

// Mail returns the generated mail in arrival order.
func (r *Runner) Mail() []model.MailItem { return r.mail }

// Automail returns the fleet.
func (r *Runner) Automail() *Automail { return r.auto }

// Tracker returns the delivery tracker.
func (r *Runner) Tracker() *Tracker { return r.tracker }

// Run advances the simulation until every item is delivered. Each tick adds
// the mail arriving at that tick to the pool, operates every robot in roster
// order, runs the allocation pass and advances the clock. The report is
// returned even when the run fails.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	r.log.Infof("simulation started: %d items, %d robots", len(r.mail), len(r.auto.Robots))
	next := 0
	for {
		now := r.clock.Now()
		if err := ctx.Err(); err != nil {
			return r.report(now), err
		}
		if r.tracker.Delivered() == len(r.mail) {
			r.log.Infof("simulation complete at tick %d", now)
			return r.report(now), nil
		}
		if r.cfg.MaxTicks > 0 && now > r.cfg.MaxTicks {
			return r.report(now), fmt.Errorf("%w: %d of %d delivered", ErrMaxTicks, r.tracker.Delivered(), len(r.mail))
		}

		for next < len(r.mail) && r.mail[next].ArrivalTime <= now {
			r.auto.Pool.AddToPool(r.mail[next])
			next++
		}
		if err := r.step(ctx); err != nil {
			r.log.Errorf("tick %d: %v", now, err)
			return r.report(now), fmt.Errorf("%w: tick %d: %w", ErrUnableToComplete, now, err)
		}
		if r.events != nil {
			r.events.Publish(events.TickEvent{
				Tick:      now,
				Pending:   r.auto.Pool.PendingCount(),
				Waiting:   r.auto.Pool.WaitingCount(),
				Delivered: r.tracker.Delivered(),
			})
		}
		if r.tracker.Delivered() == len(r.mail) {
			r.log.Infof("simulation complete at tick %d", now)
			return r.report(now), nil
		}
		r.clock.Advance()
	}
}

func (r *Runner) step(ctx context.Context) error {
	for _, rb := range r.auto.Robots {
		if err := rb.Operate(ctx); err != nil {
			return err
		}
	}
	return r.auto.Pool.LoadItemsToRobot()
}

func (r *Runner) report(tick int) Report {
	return buildReport(len(r.mail), tick, r.tracker, r.auto.Groups)
}
