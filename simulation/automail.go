package simulation

import (
	"github.com/kilianp07/automail/core/mailpool"
	"github.com/kilianp07/automail/core/robot"
)

// Automail is the robot fleet and the mail pool serving it.
type Automail struct {
	Pool   *mailpool.Pool
	Robots []*robot.Robot
	Groups map[robot.Variant]*robot.Group
}

// NewAutomail builds the roster: Regular robots first, then Fast, then Bulk,
// numbered with a single index across variants. env.Pool is set to pool.
func NewAutomail(roster RosterConfig, pool *mailpool.Pool, env robot.Env) *Automail {
	env.Pool = pool
	a := &Automail{Pool: pool, Groups: make(map[robot.Variant]*robot.Group, len(robot.Variants))}
	counts := map[robot.Variant]int{
		robot.Regular: roster.Regular,
		robot.Fast:    roster.Fast,
		robot.Bulk:    roster.Bulk,
	}
	index := 0
	for _, v := range robot.Variants {
		g := robot.NewGroup(v)
		a.Groups[v] = g
		for range counts[v] {
			a.Robots = append(a.Robots, robot.New(index, g, env))
			index++
		}
	}
	return a
}
