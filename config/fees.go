package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/automail/infra/bms"
	"github.com/kilianp07/automail/infra/feecache"
)

// FeesConfig selects where service fees come from and where the last known
// fee of each floor is cached.
type FeesConfig struct {
	// Source is "simulated" for the in-process modem, "http" for a remote
	// building management service or "fixed".
	Source string `json:"source"`
	// URL of the building management service when Source is http.
	URL       string `json:"url"`
	TimeoutMS int    `json:"timeout_ms"`
	Retries   int    `json:"retries"`
	BackoffMS int    `json:"backoff_ms"`
	// FailureRate and Seed drive the simulated source.
	FailureRate float64     `json:"failure_rate"`
	Seed        uint64      `json:"seed"`
	Pricing     bms.Pricing `json:"pricing"`
	// Fixed is the fee charged on every floor by the fixed source.
	Fixed float64 `json:"fixed"`
	// Cache is "memory" or "redis".
	Cache string          `json:"cache"`
	Redis feecache.Config `json:"redis"`
}

// SetDefaults applies sane defaults.
func (c *FeesConfig) SetDefaults() {
	if c.Source == "" {
		c.Source = "simulated"
	}
	if c.TimeoutMS == 0 {
		c.TimeoutMS = 2000
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 50
	}
	if c.Pricing.BaseFee == 0 && c.Pricing.PerFloorFee == 0 && len(c.Pricing.Overrides) == 0 {
		c.Pricing = bms.Pricing{BaseFee: 1.5, PerFloorFee: 0.1}
	}
	if c.Cache == "" {
		c.Cache = "memory"
	}
	if c.Cache == "redis" {
		if c.Redis.Addr == "" {
			c.Redis.Addr = "localhost:6379"
		}
		if c.Redis.Prefix == "" {
			c.Redis.Prefix = "automail:fee"
		}
	}
}

// Validate checks mandatory fields.
func (c FeesConfig) Validate() error {
	var errs []error
	switch c.Source {
	case "simulated", "fixed":
	case "http":
		if c.URL == "" {
			errs = append(errs, errors.New("url is required for the http source"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fee source %q", c.Source))
	}
	switch c.Cache {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required for the redis cache"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown fee cache %q", c.Cache))
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		errs = append(errs, fmt.Errorf("failure_rate %v outside [0,1]", c.FailureRate))
	}
	if c.TimeoutMS < 0 || c.Retries < 0 || c.BackoffMS < 0 {
		errs = append(errs, errors.New("timeout_ms, retries and backoff_ms must not be negative"))
	}
	if c.Fixed < 0 {
		errs = append(errs, errors.New("fixed fee must not be negative"))
	}
	return errors.Join(errs...)
}

// Timeout returns the per request timeout of the http source.
func (c FeesConfig) Timeout() time.Duration { return time.Duration(c.TimeoutMS) * time.Millisecond }

// Backoff returns the initial retry backoff of the http source.
func (c FeesConfig) Backoff() time.Duration { return time.Duration(c.BackoffMS) * time.Millisecond }
