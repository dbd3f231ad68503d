package fee

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kilianp07/automail/core/logger"
)

// ErrNegativeFee is returned when the building management system reports a
// negative fee, which is how it signals a failed lookup.
var ErrNegativeFee = errors.New("negative service fee")

// Lookup queries the building management system for the service fee of a
// floor. Calls may fail or time out.
type Lookup interface {
	LookupServiceFee(ctx context.Context, floor int) (float64, error)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(ctx context.Context, floor int) (float64, error)

func (f LookupFunc) LookupServiceFee(ctx context.Context, floor int) (float64, error) {
	return f(ctx, floor)
}

// Cache remembers the last fee successfully retrieved for each floor.
type Cache interface {
	Get(ctx context.Context, floor int) (fee float64, ok bool, err error)
	Set(ctx context.Context, floor int, fee float64) error
}

// MemoryCache is an in-process Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	fees map[int]float64
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{fees: make(map[int]float64)}
}

func (c *MemoryCache) Get(_ context.Context, floor int) (float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.fees[floor]
	return f, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, floor int, fee float64) error {
	c.mu.Lock()
	c.fees[floor] = fee
	c.mu.Unlock()
	return nil
}

// FallbackLookup turns a fallible Lookup into a ServiceFeeSource. A failed
// lookup returns the last known fee for the floor, or 0 if none is known.
type FallbackLookup struct {
	lookup Lookup
	cache  Cache
	log    logger.Logger
}

// NewFallbackLookup wraps l. A nil cache selects a MemoryCache.
func NewFallbackLookup(l Lookup, cache Cache, log logger.Logger) *FallbackLookup {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &FallbackLookup{lookup: l, cache: cache, log: log}
}

// ServiceFee implements ServiceFeeSource.
func (f *FallbackLookup) ServiceFee(ctx context.Context, floor int) float64 {
	fee, err := f.fetch(ctx, floor)
	if err == nil {
		if cerr := f.cache.Set(ctx, floor, fee); cerr != nil && f.log != nil {
			f.log.Warnf("fee cache set floor %d: %v", floor, cerr)
		}
		return fee
	}
	if f.log != nil {
		f.log.Warnf("service fee lookup floor %d failed, using fallback: %v", floor, err)
	}
	cached, ok, cerr := f.cache.Get(ctx, floor)
	if cerr != nil {
		if f.log != nil {
			f.log.Errorf("fee cache get floor %d: %v", floor, cerr)
		}
		return 0
	}
	if !ok {
		return 0
	}
	return cached
}

func (f *FallbackLookup) fetch(ctx context.Context, floor int) (float64, error) {
	if f.lookup == nil {
		return 0, fmt.Errorf("no fee lookup configured")
	}
	fee, err := f.lookup.LookupServiceFee(ctx, floor)
	if err != nil {
		return 0, err
	}
	if fee < 0 {
		return 0, fmt.Errorf("floor %d: %w", floor, ErrNegativeFee)
	}
	return fee, nil
}
