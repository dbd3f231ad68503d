package bms

// Pricing computes the nominal fee of a floor.
type Pricing struct {
	BaseFee     float64         `json:"base_fee"`
	PerFloorFee float64         `json:"per_floor_fee"`
	Overrides   map[int]float64 `json:"overrides"`
}

// Fee returns the override for floor if set, else BaseFee + PerFloorFee*floor.
func (p Pricing) Fee(floor int) float64 {
	if f, ok := p.Overrides[floor]; ok {
		return f
	}
	return p.BaseFee + p.PerFloorFee*float64(floor)
}

// FeeResponse is the body returned by GET /fees/{floor}.
type FeeResponse struct {
	Floor int     `json:"floor"`
	Fee   float64 `json:"fee"`
}
