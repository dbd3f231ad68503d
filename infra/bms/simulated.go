package bms

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/kilianp07/automail/core/fee"
)

// Simulated is an in-process stand-in for the building's wifi modem. A
// dropped call answers -1, the way the modem reports a failed lookup.
type Simulated struct {
	pricing     Pricing
	failureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

var _ fee.Lookup = (*Simulated)(nil)

// NewSimulated returns a modem dropping calls with probability failureRate.
func NewSimulated(p Pricing, failureRate float64, seed uint64) *Simulated {
	return &Simulated{
		pricing:     p,
		failureRate: failureRate,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// LookupServiceFee implements fee.Lookup.
func (s *Simulated) LookupServiceFee(ctx context.Context, floor int) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s.failureRate > 0 {
		s.mu.Lock()
		dropped := s.rng.Float64() < s.failureRate
		s.mu.Unlock()
		if dropped {
			return -1, nil
		}
	}
	return s.pricing.Fee(floor), nil
}
