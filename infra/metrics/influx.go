package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/automail/core/metrics"
	"github.com/kilianp07/automail/infra/logger"
)

// InfluxSink writes delivery events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDelivery writes the delivery as a line protocol point.
func (s *InfluxSink) RecordDelivery(ev coremetrics.DeliveryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("mail_delivered").
		AddTag("robot_id", ev.RobotID).
		AddTag("variant", ev.Variant).
		AddField("tick", ev.Tick).
		AddField("floor", ev.Floor).
		AddField("delay", ev.Delay).
		AddField("weight", ev.Weight)
	if ev.Charged {
		p = p.AddField("fee", round3(ev.Fee))
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(ev.Time))
}

// RecordStateChange writes a robot state transition.
func (s *InfluxSink) RecordStateChange(ev coremetrics.StateChangeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("robot_state").
		AddTag("robot_id", ev.RobotID).
		AddTag("state", ev.To).
		AddField("from", ev.From).
		AddField("tick", ev.Tick).
		AddField("floor", ev.Floor).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTick writes the pool occupancy at the end of a tick.
func (s *InfluxSink) RecordTick(snap coremetrics.TickSnapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("pool_snapshot").
		AddField("tick", snap.Tick).
		AddField("pending", snap.Pending).
		AddField("waiting", snap.Waiting).
		AddField("delivered", snap.Delivered).
		SetTime(snap.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
