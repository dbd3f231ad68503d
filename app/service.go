package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/automail/app/plugins"
	"github.com/kilianp07/automail/config"
	"github.com/kilianp07/automail/core/delivery/logging"
	coremetrics "github.com/kilianp07/automail/core/metrics"
	coremqtt "github.com/kilianp07/automail/core/mqtt"
	"github.com/kilianp07/automail/infra/kpi"
	"github.com/kilianp07/automail/infra/logger"
	"github.com/kilianp07/automail/infra/metrics"
	"github.com/kilianp07/automail/infra/mqtt"
	"github.com/kilianp07/automail/internal/eventbus"
	"github.com/kilianp07/automail/simulation"
)

// eventBuffer is sized so that collectors keep up with a run that never
// sleeps between ticks.
const eventBuffer = 8192

// newPublisher connects the MQTT publisher; replaced in tests.
var newPublisher = func(cfg mqtt.Config) (coremqtt.Publisher, func(), error) {
	p, err := mqtt.NewPahoPublisher(cfg)
	if err != nil {
		return nil, nil, err
	}
	return p, p.Disconnect, nil
}

// Service runs one simulation with its fee source, metrics sinks, delivery
// log and MQTT publisher.
type Service struct {
	cfg       *config.Config
	log       logger.Logger
	bus       *eventbus.EventBus
	runner    *simulation.Runner
	sink      coremetrics.MetricsSink
	publisher coremqtt.Publisher
	kpi       *kpi.SQLiteStore
	closers   []func() error
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	s := &Service{cfg: cfg, log: logger.New("service"), bus: eventbus.New(eventBuffer)}
	if err := s.init(ctx); err != nil {
		if cerr := s.Close(); cerr != nil {
			s.log.Errorf("service close: %v", cerr)
		}
		return nil, err
	}
	return s, nil
}

func (s *Service) init(ctx context.Context) error {
	deps := simulation.Deps{Events: s.bus, Log: logger.New("simulation")}

	if s.cfg.Simulation.ChargeFees {
		src, closeFees, err := plugins.NewFeeSource(ctx, s.cfg.Fees, logger.New("fees"))
		if err != nil {
			return err
		}
		s.closers = append(s.closers, closeFees)
		deps.Fees = src
	}

	sink, err := coremetrics.NewMetricsSink(s.cfg.Metrics.Sinks)
	if err != nil {
		return fmt.Errorf("metrics sink: %w", err)
	}
	s.sink = sink
	if c, ok := sink.(interface{ Close() }); ok {
		s.closers = append(s.closers, func() error { c.Close(); return nil })
	}

	store, err := logging.Open(s.cfg.DeliveryLog)
	if err != nil {
		return fmt.Errorf("delivery log: %w", err)
	}
	if store != nil {
		s.closers = append(s.closers, store.Close)
		deps.Sinks = append(deps.Sinks, logging.NewStoreSink(store))
	}

	if s.cfg.MQTT.Enabled {
		pub, disconnect, err := newPublisher(s.cfg.MQTT.Config)
		if err != nil {
			return fmt.Errorf("mqtt publisher: %w", err)
		}
		s.publisher = pub
		s.closers = append(s.closers, func() error { disconnect(); return nil })
	}

	if path := s.cfg.KPI.Path; path != "" {
		store, err := kpi.NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("kpi store: %w", err)
		}
		s.kpi = store
		s.closers = append(s.closers, store.Close)
	}

	runner, err := simulation.NewRunner(s.cfg.Simulation, deps)
	if err != nil {
		return err
	}
	s.runner = runner
	return nil
}

// Runner returns the simulation runner.
func (s *Service) Runner() *simulation.Runner { return s.runner }

// Run executes the simulation and waits until every event has reached the
// metrics sinks and the MQTT publisher. The Prometheus endpoint, when
// configured, keeps serving until ctx is canceled.
func (s *Service) Run(ctx context.Context) (simulation.Report, error) {
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	collected := metrics.StartEventCollector(ctx, s.bus, s.sink)
	forwarded := mqtt.StartForwarder(ctx, s.bus, s.publisher)

	report, err := s.runner.Run(ctx)
	s.bus.Close()
	<-collected
	<-forwarded
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d events dropped by slow subscribers", n)
	}
	if err != nil {
		s.log.Errorf("simulation failed at tick %d: %v", report.FinalTick, err)
	}
	if s.kpi != nil {
		rec := kpi.FromReport(uuid.NewString(), s.cfg.Simulation.Seed, time.Now(), report)
		if kerr := s.kpi.Add(context.WithoutCancel(ctx), rec); kerr != nil {
			s.log.Errorf("kpi: %v", kerr)
		}
	}
	return report, err
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
