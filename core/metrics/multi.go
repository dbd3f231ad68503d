package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDelivery forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordDelivery(ev DeliveryEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordDelivery(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordStateChange forwards state changes to sinks supporting them.
func (m *MultiSink) RecordStateChange(ev StateChangeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(StateChangeRecorder); ok {
			if err := rec.RecordStateChange(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordAllocation forwards allocation events.
func (m *MultiSink) RecordAllocation(ev AllocationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(AllocationRecorder); ok {
			if err := rec.RecordAllocation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTick forwards tick snapshots.
func (m *MultiSink) RecordTick(snap TickSnapshot) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TickRecorder); ok {
			if err := rec.RecordTick(snap); err != nil {
				return err
			}
		}
	}
	return nil
}
