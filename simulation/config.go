package simulation

import (
	"errors"
	"fmt"
)

// RosterConfig is the number of robots of each variant.
type RosterConfig struct {
	Regular int `json:"regular"`
	Fast    int `json:"fast"`
	Bulk    int `json:"bulk"`
}

// Total returns the size of the roster.
func (r RosterConfig) Total() int { return r.Regular + r.Fast + r.Bulk }

// Config describes one simulation run.
type Config struct {
	Seed            uint64       `json:"seed"`
	Floors          int          `json:"floors"`
	MailroomFloor   int          `json:"mailroom_floor"`
	MailToCreate    int          `json:"mail_to_create"`
	LastArrivalTick int          `json:"last_arrival_tick"`
	// MaxTicks bounds the run; 0 means unbounded.
	MaxTicks       int          `json:"max_ticks"`
	OverweightRate float64      `json:"overweight_rate"`
	ChargeFees     bool         `json:"charge_fees"`
	Robots         RosterConfig `json:"robots"`
}

// SetDefaults fills unset fields with the defaults of the reference building.
func (c *Config) SetDefaults() {
	if c.Floors == 0 {
		c.Floors = 14
	}
	if c.MailToCreate == 0 {
		c.MailToCreate = 80
	}
	if c.LastArrivalTick == 0 {
		c.LastArrivalTick = 100
	}
	if c.MaxTicks == 0 {
		c.MaxTicks = 10000
	}
	if c.Robots.Total() == 0 {
		c.Robots = RosterConfig{Regular: 1, Fast: 1, Bulk: 1}
	}
}

// Validate checks that the configuration describes a runnable simulation.
func (c Config) Validate() error {
	var errs []error
	if c.Floors < 1 {
		errs = append(errs, fmt.Errorf("floors must be positive, got %d", c.Floors))
	}
	if c.MailroomFloor < 0 || c.MailroomFloor >= c.Floors {
		errs = append(errs, fmt.Errorf("mailroom floor %d outside building of %d floors", c.MailroomFloor, c.Floors))
	}
	if c.MailToCreate < 0 {
		errs = append(errs, errors.New("mail_to_create must not be negative"))
	}
	if c.LastArrivalTick < 1 {
		errs = append(errs, errors.New("last_arrival_tick must be at least 1"))
	}
	if c.MaxTicks < 0 {
		errs = append(errs, errors.New("max_ticks must not be negative"))
	}
	if c.OverweightRate < 0 || c.OverweightRate > 1 {
		errs = append(errs, fmt.Errorf("overweight_rate %v outside [0,1]", c.OverweightRate))
	}
	if c.Robots.Regular < 0 || c.Robots.Fast < 0 || c.Robots.Bulk < 0 {
		errs = append(errs, errors.New("robot counts must not be negative"))
	}
	if c.Robots.Total() == 0 {
		errs = append(errs, errors.New("at least one robot is required"))
	}
	return errors.Join(errs...)
}
