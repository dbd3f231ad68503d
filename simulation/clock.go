package simulation

// Clock is the simulation tick source. Ticks start at 1.
type Clock struct {
	tick int
}

// NewClock returns a clock at tick 1.
func NewClock() *Clock { return &Clock{tick: 1} }

// Now returns the current tick.
func (c *Clock) Now() int { return c.tick }

// Advance moves the clock to the next tick.
func (c *Clock) Advance() { c.tick++ }
