package plugins

import (
	"context"
	"fmt"
	"sort"

	"github.com/kilianp07/automail/config"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/logger"
)

// FeeSourceFactory builds the building management lookup selected by
// fees.source.
type FeeSourceFactory func(cfg config.FeesConfig, log logger.Logger) (fee.Lookup, error)

// FeeCacheFactory builds the last-known-fee cache selected by fees.cache. The
// returned function releases the cache.
type FeeCacheFactory func(ctx context.Context, cfg config.FeesConfig) (fee.Cache, func() error, error)

var (
	FeeSources = map[string]FeeSourceFactory{}
	FeeCaches  = map[string]FeeCacheFactory{}
)

func RegisterFeeSource(name string, f FeeSourceFactory) { FeeSources[name] = f }
func RegisterFeeCache(name string, f FeeCacheFactory)   { FeeCaches[name] = f }

// NewFeeSource builds the configured lookup and cache and combines them into
// a ServiceFeeSource that falls back to the last known fee.
func NewFeeSource(ctx context.Context, cfg config.FeesConfig, log logger.Logger) (fee.ServiceFeeSource, func() error, error) {
	newSource, ok := FeeSources[cfg.Source]
	if !ok {
		return nil, nil, fmt.Errorf("unknown fee source %q (known: %v)", cfg.Source, names(FeeSources))
	}
	newCache, ok := FeeCaches[cfg.Cache]
	if !ok {
		return nil, nil, fmt.Errorf("unknown fee cache %q (known: %v)", cfg.Cache, names(FeeCaches))
	}
	lookup, err := newSource(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("fee source %s: %w", cfg.Source, err)
	}
	cache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("fee cache %s: %w", cfg.Cache, err)
	}
	return fee.NewFallbackLookup(lookup, cache, log), closeCache, nil
}

func names[T any](m map[string]T) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
