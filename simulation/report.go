package simulation

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/automail/core/robot"
)

// Report summarizes a run.
type Report struct {
	Generated int     `json:"generated"`
	Delivered int     `json:"delivered"`
	FinalTick int     `json:"final_tick"`
	Score     float64 `json:"score"`

	DelayMean   float64 `json:"delay_mean"`
	DelayStdDev float64 `json:"delay_stddev"`
	DelayP95    float64 `json:"delay_p95"`

	// Charges is the total fee charged per variant name.
	Charges map[string]float64 `json:"charges"`
	// OperatingTime is the shared operating-time counter per variant name.
	OperatingTime map[string]int `json:"operating_time"`
	Robots        map[string]int `json:"robots"`
}

// TotalCharges returns the sum of all charges.
func (r Report) TotalCharges() float64 {
	var total float64
	for _, v := range r.Charges {
		total += v
	}
	return total
}

func buildReport(generated, finalTick int, t *Tracker, groups map[robot.Variant]*robot.Group) Report {
	delays, charges, score := t.snapshot()
	r := Report{
		Generated:     generated,
		Delivered:     len(delays),
		FinalTick:     finalTick,
		Score:         score,
		Charges:       charges,
		OperatingTime: make(map[string]int, len(groups)),
		Robots:        make(map[string]int, len(groups)),
	}
	for v, g := range groups {
		r.OperatingTime[v.String()] = g.TotalOperatingTime()
		r.Robots[v.String()] = g.Count()
	}
	if len(delays) == 0 {
		return r
	}
	r.DelayMean = stat.Mean(delays, nil)
	if len(delays) > 1 {
		r.DelayStdDev = stat.StdDev(delays, nil)
	}
	slices.Sort(delays)
	r.DelayP95 = stat.Quantile(0.95, stat.Empirical, delays, nil)
	return r
}
