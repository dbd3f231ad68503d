package plugins

import (
	"context"

	"github.com/kilianp07/automail/config"
	"github.com/kilianp07/automail/core/fee"
	"github.com/kilianp07/automail/core/logger"
	"github.com/kilianp07/automail/infra/bms"
	"github.com/kilianp07/automail/infra/feecache"
)

func init() {
	RegisterFeeSource("simulated", func(cfg config.FeesConfig, _ logger.Logger) (fee.Lookup, error) {
		return bms.NewSimulated(cfg.Pricing, cfg.FailureRate, cfg.Seed), nil
	})
	RegisterFeeSource("http", func(cfg config.FeesConfig, log logger.Logger) (fee.Lookup, error) {
		return bms.NewClient(cfg.URL,
			bms.WithTimeout(cfg.Timeout()),
			bms.WithRetry(cfg.Retries, cfg.Backoff()),
			bms.WithClientLogger(log),
		), nil
	})
	RegisterFeeSource("fixed", func(cfg config.FeesConfig, _ logger.Logger) (fee.Lookup, error) {
		return fee.LookupFunc(func(context.Context, int) (float64, error) { return cfg.Fixed, nil }), nil
	})

	RegisterFeeCache("memory", func(context.Context, config.FeesConfig) (fee.Cache, func() error, error) {
		return fee.NewMemoryCache(), func() error { return nil }, nil
	})
	RegisterFeeCache("redis", func(ctx context.Context, cfg config.FeesConfig) (fee.Cache, func() error, error) {
		c, err := feecache.New(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	})
}
