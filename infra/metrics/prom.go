package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/automail/core/metrics"
)

// PromSink records delivery engine events in Prometheus metrics.
type PromSink struct {
	deliveries  *prometheus.CounterVec
	delay       *prometheus.HistogramVec
	fees        *prometheus.CounterVec
	transitions *prometheus.CounterVec
	allocations *prometheus.HistogramVec
	pending     prometheus.Gauge
	waiting     prometheus.Gauge
	tick        prometheus.Gauge
}

// NewPromSink registers delivery metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automail_deliveries_total",
			Help: "Total number of delivered mail items",
		}, []string{"variant"}),
		delay: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automail_delivery_delay_ticks",
			Help:    "Ticks between mail arrival and delivery",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"variant"}),
		fees: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automail_delivery_fees_total",
			Help: "Sum of charged delivery fees",
		}, []string{"variant"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "automail_robot_transitions_total",
			Help: "Robot state transitions",
		}, []string{"from", "to"}),
		allocations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automail_allocation_items",
			Help:    "Number of items loaded per dispatch",
			Buckets: prometheus.LinearBuckets(1, 1, 5),
		}, []string{"prefix"}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "automail_pool_pending_items",
			Help: "Mail items waiting in the pool",
		}),
		waiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "automail_pool_waiting_robots",
			Help: "Robots waiting at the mailroom",
		}),
		tick: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "automail_clock_tick",
			Help: "Current simulation tick",
		}),
	}
	var err error
	if s.deliveries, err = register(reg, s.deliveries); err != nil {
		return nil, err
	}
	if s.delay, err = register(reg, s.delay); err != nil {
		return nil, err
	}
	if s.fees, err = register(reg, s.fees); err != nil {
		return nil, err
	}
	if s.transitions, err = register(reg, s.transitions); err != nil {
		return nil, err
	}
	if s.allocations, err = register(reg, s.allocations); err != nil {
		return nil, err
	}
	if s.pending, err = register(reg, s.pending); err != nil {
		return nil, err
	}
	if s.waiting, err = register(reg, s.waiting); err != nil {
		return nil, err
	}
	if s.tick, err = register(reg, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDelivery counts the delivery and observes its delay.
func (s *PromSink) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	s.deliveries.WithLabelValues(ev.Variant).Inc()
	s.delay.WithLabelValues(ev.Variant).Observe(float64(ev.Delay))
	if ev.Charged {
		s.fees.WithLabelValues(ev.Variant).Add(ev.Fee)
	}
	return nil
}

// RecordStateChange counts a robot state transition.
func (s *PromSink) RecordStateChange(ev coremetrics.StateChangeEvent) error {
	s.transitions.WithLabelValues(ev.From, ev.To).Inc()
	return nil
}

// RecordAllocation observes the number of items loaded on a robot.
func (s *PromSink) RecordAllocation(ev coremetrics.AllocationEvent) error {
	prefix := ""
	if ev.RobotID != "" {
		prefix = ev.RobotID[:1]
	}
	s.allocations.WithLabelValues(prefix).Observe(float64(ev.Items))
	return nil
}

// RecordTick sets the pool gauges.
func (s *PromSink) RecordTick(snap coremetrics.TickSnapshot) error {
	s.pending.Set(float64(snap.Pending))
	s.waiting.Set(float64(snap.Waiting))
	s.tick.Set(float64(snap.Tick))
	return nil
}
