package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/logger"
)

// ErrAlreadyDelivered is returned when an item is delivered twice.
var ErrAlreadyDelivered = errors.New("item already delivered")

const delayPenalty = 1.2

// Tracker is the delivery sink of a run. It rejects duplicates and
// accumulates the run statistics.
type Tracker struct {
	log logger.Logger

	mu        sync.Mutex
	delivered map[string]struct{}
	delays    []float64
	score     float64
	charges   map[string]float64
	last      int
}

// NewTracker returns an empty tracker.
func NewTracker(log logger.Logger) *Tracker {
	if log == nil {
		log = logger.Nop{}
	}
	return &Tracker{
		log:       log,
		delivered: make(map[string]struct{}),
		charges:   make(map[string]float64),
	}
}

// Deliver implements delivery.Sink.
func (t *Tracker) Deliver(_ context.Context, rec delivery.Record) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, dup := t.delivered[rec.Item.ID]; dup {
		return fmt.Errorf("item %s: %w", rec.Item.ID, ErrAlreadyDelivered)
	}
	t.delivered[rec.Item.ID] = struct{}{}
	t.log.Infof("T: %3d > Delivered(%4d) [%s%s]", rec.Tick, len(t.delivered), rec.Item, rec.Annotation())

	delay := float64(rec.Delay())
	t.delays = append(t.delays, delay)
	t.score += math.Pow(delay, delayPenalty) * (1 + math.Sqrt(float64(rec.Item.Weight)))
	if rec.Fee != nil {
		t.charges[rec.Variant] += rec.Fee.TotalCost
	}
	t.last = rec.Tick
	return nil
}

// Delivered returns the number of distinct items delivered.
func (t *Tracker) Delivered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.delivered)
}

// Score returns the accumulated delivery score; lower is better.
func (t *Tracker) Score() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.score
}

func (t *Tracker) snapshot() (delays []float64, charges map[string]float64, score float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	charges = make(map[string]float64, len(t.charges))
	for k, v := range t.charges {
		charges[k] = v
	}
	return append([]float64(nil), t.delays...), charges, t.score
}
