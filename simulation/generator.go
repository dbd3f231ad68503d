package simulation

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"

	"github.com/kilianp07/automail/core/model"
)

const (
	weightMean   = 200.0
	weightStdDev = 700.0
)

// Generator creates the mail of a run from a seed.
type Generator struct {
	floors          int
	mailroom        int
	mailToCreate    int
	lastArrivalTick int
	overweightRate  float64

	src *rand.ChaCha8
	rng *rand.Rand
}

// NewGenerator returns a generator for cfg. Two generators with the same
// configuration produce the same mail.
func NewGenerator(cfg Config) *Generator {
	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	return &Generator{
		floors:          cfg.Floors,
		mailroom:        cfg.MailroomFloor,
		mailToCreate:    cfg.MailToCreate,
		lastArrivalTick: cfg.LastArrivalTick,
		overweightRate:  cfg.OverweightRate,
		src:             src,
		rng:             rand.New(src),
	}
}

// Generate returns the mail of the run ordered by arrival tick. The number
// of items varies by up to 20% around the configured amount.
func (g *Generator) Generate() ([]model.MailItem, error) {
	n := g.mailToCreate * 4 / 5
	if spread := g.mailToCreate * 2 / 5; spread > 0 {
		n += g.rng.IntN(spread)
	}
	items := make([]model.MailItem, 0, n)
	for range n {
		id, err := uuid.NewRandomFromReader(g.src)
		if err != nil {
			return nil, fmt.Errorf("mail id: %w", err)
		}
		items = append(items, model.NewMailItem(id.String(), g.destination(), g.arrival(), g.weight()))
	}
	slices.SortStableFunc(items, func(a, b model.MailItem) int {
		return cmp.Compare(a.ArrivalTime, b.ArrivalTime)
	})
	return items, nil
}

// destination picks any floor but the mailroom.
func (g *Generator) destination() int {
	if g.floors <= 1 {
		return g.mailroom
	}
	f := g.rng.IntN(g.floors - 1)
	if f >= g.mailroom {
		f++
	}
	return f
}

func (g *Generator) arrival() int {
	if g.lastArrivalTick <= 1 {
		return 1
	}
	return 1 + g.rng.IntN(g.lastArrivalTick)
}

func (g *Generator) weight() int {
	if g.overweightRate > 0 && g.rng.Float64() < g.overweightRate {
		return model.MaxItemWeight + 1 + g.rng.IntN(1000)
	}
	w := int(weightMean + math.Abs(g.rng.NormFloat64())*weightStdDev)
	return min(w, model.MaxItemWeight)
}
