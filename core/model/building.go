package model

// Building exposes the floor topology robots navigate.
type Building interface {
	MailroomFloor() int
}

// Clock supplies the current simulation tick. It is used for logging only.
type Clock interface {
	Now() int
}

// FixedBuilding is a Building with a static layout.
type FixedBuilding struct {
	Floors   int
	Mailroom int
}

// MailroomFloor returns the floor hosting the mailroom.
func (b FixedBuilding) MailroomFloor() int { return b.Mailroom }

// Lowest returns the lowest floor mail can be addressed to.
func (b FixedBuilding) Lowest() int { return 0 }

// Highest returns the highest floor of the building.
func (b FixedBuilding) Highest() int { return b.Floors - 1 }

// StaticClock always returns the same tick. Useful when no simulation clock
// drives the engine.
type StaticClock int

func (c StaticClock) Now() int { return int(c) }
