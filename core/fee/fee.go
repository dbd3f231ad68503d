package fee

import (
	"context"
	"fmt"
)

// Breakdown is the fee annotation attached to a delivery.
type Breakdown struct {
	ServiceFee           float64 `json:"service_fee"`
	MaintenanceCost      float64 `json:"maintenance_cost"`
	AverageOperatingTime float64 `json:"average_operating_time"`
	TotalCost            float64 `json:"total_cost"`
}

func (b Breakdown) String() string {
	return fmt.Sprintf(" | Service Fee: %.2f | Maintenance: %.2f | Avg. Operating Time: %.2f | Total Charge: %.2f",
		b.ServiceFee, b.MaintenanceCost, b.AverageOperatingTime, b.TotalCost)
}

// ServiceFeeSource returns the service fee for a floor. Implementations never
// fail; they apply their own fallback.
type ServiceFeeSource interface {
	ServiceFee(ctx context.Context, floor int) float64
}

// FixedFee is a ServiceFeeSource charging the same fee on every floor.
type FixedFee float64

func (f FixedFee) ServiceFee(context.Context, int) float64 { return float64(f) }

// Calculator builds fee breakdowns.
type Calculator struct {
	fees ServiceFeeSource
}

// NewCalculator returns a Calculator using src for service fees.
func NewCalculator(src ServiceFeeSource) *Calculator {
	if src == nil {
		src = FixedFee(0)
	}
	return &Calculator{fees: src}
}

// Charge computes the breakdown for a delivery to floor by a robot whose
// variant has the given base rate and average operating time.
func (c *Calculator) Charge(ctx context.Context, floor int, baseRate, averageOperatingTime float64) Breakdown {
	service := c.fees.ServiceFee(ctx, floor)
	maintenance := baseRate * averageOperatingTime
	return Breakdown{
		ServiceFee:           service,
		MaintenanceCost:      maintenance,
		AverageOperatingTime: averageOperatingTime,
		TotalCost:            service + maintenance,
	}
}
