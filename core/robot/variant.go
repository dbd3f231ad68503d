package robot

import (
	"fmt"
	"strings"
)

// Variant identifies a robot kind.
type Variant int

const (
	Regular Variant = iota
	Fast
	Bulk
)

// Variants lists every variant in roster order.
var Variants = []Variant{Regular, Fast, Bulk}

func (v Variant) String() string {
	switch v {
	case Regular:
		return "regular"
	case Fast:
		return "fast"
	case Bulk:
		return "bulk"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant converts a name such as "bulk" to a Variant.
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if strings.EqualFold(s, v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown robot variant %q", s)
}

// Prefix is the id prefix of robots of this variant.
func (v Variant) Prefix() string {
	switch v {
	case Fast:
		return "F"
	case Bulk:
		return "B"
	default:
		return "R"
	}
}

// HasHand reports whether the variant carries its current item in a hand.
func (v Variant) HasHand() bool { return v != Bulk }

// TubeCapacity is the number of items the variant's tube holds.
func (v Variant) TubeCapacity() int {
	switch v {
	case Regular:
		return 1
	case Bulk:
		return 5
	default:
		return 0
	}
}

// Capacity is the maximum number of items held at once, hand included.
func (v Variant) Capacity() int {
	if v.HasHand() {
		return 1 + v.TubeCapacity()
	}
	return v.TubeCapacity()
}

// Speed is the number of floors travelled per tick.
func (v Variant) Speed() int {
	if v == Fast {
		return 3
	}
	return 1
}

// BaseRate is the maintenance charge per unit of average operating time.
func (v Variant) BaseRate() float64 {
	switch v {
	case Fast:
		return 0.05
	case Bulk:
		return 0.01
	default:
		return 0.025
	}
}

// Group is shared by all robots of one variant. It counts the robots and
// accumulates their operating time.
type Group struct {
	variant       Variant
	operatingTime int
	robots        int
}

// NewGroup returns an empty Group for v.
func NewGroup(v Variant) *Group { return &Group{variant: v} }

func (g *Group) Variant() Variant { return g.variant }

// Count returns the number of robots in the group.
func (g *Group) Count() int { return g.robots }

// TotalOperatingTime returns the ticks spent returning or delivering by all
// robots of the group.
func (g *Group) TotalOperatingTime() int { return g.operatingTime }

// AverageOperatingTime returns TotalOperatingTime divided by Count.
func (g *Group) AverageOperatingTime() float64 {
	if g.robots == 0 {
		return 0
	}
	return float64(g.operatingTime) / float64(g.robots)
}
