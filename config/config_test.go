package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "config.yaml", `simulation:
  seed: 11
  floors: 10
  mail_to_create: 40
  last_arrival_tick: 50
  charge_fees: true
  robots:
    regular: 2
    fast: 1
    bulk: 3
fees:
  source: http
  url: "http://bms.local:8090"
  retries: 5
  pricing:
    base_fee: 2
    per_floor_fee: 0.5
    overrides:
      3: 9.5
  cache: redis
  redis:
    addr: "redis:6379"
    ttl: 5m
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "nop"
delivery_log:
  backend: sqlite
  path: "/tmp/deliveries.db"
mqtt:
  enabled: true
  broker: "tcp://broker:1883"
  client_id: "automail"
  topic_prefix: "building"
logging:
  level: debug
bms_server:
  addr: ":9999"
  failure_rate: 0.2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"seed", cfg.Simulation.Seed, uint64(11)},
		{"floors", cfg.Simulation.Floors, 10},
		{"mail_to_create", cfg.Simulation.MailToCreate, 40},
		{"charge_fees", cfg.Simulation.ChargeFees, true},
		{"robots.bulk", cfg.Simulation.Robots.Bulk, 3},
		{"max_ticks default", cfg.Simulation.MaxTicks, 10000},
		{"fees.source", cfg.Fees.Source, "http"},
		{"fees.url", cfg.Fees.URL, "http://bms.local:8090"},
		{"fees.retries", cfg.Fees.Retries, 5},
		{"fees.timeout default", cfg.Fees.Timeout(), 2 * time.Second},
		{"fees.pricing.per_floor_fee", cfg.Fees.Pricing.PerFloorFee, 0.5},
		{"fees.pricing.overrides", cfg.Fees.Pricing.Overrides[3], 9.5},
		{"fees.redis.ttl", cfg.Fees.Redis.TTL, 5 * time.Minute},
		{"fees.redis.prefix default", cfg.Fees.Redis.Prefix, "automail:fee"},
		{"metrics.prometheus_addr", cfg.Metrics.PrometheusAddr, ":9100"},
		{"metrics.sinks", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"delivery_log.backend", cfg.DeliveryLog.Backend, "sqlite"},
		{"mqtt.enabled", cfg.MQTT.Enabled, true},
		{"mqtt.broker", cfg.MQTT.Broker, "tcp://broker:1883"},
		{"mqtt.topic_prefix", cfg.MQTT.TopicPrefix, "building"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format default", cfg.Logging.Format, "json"},
		{"bms_server.addr", cfg.BMSServer.Addr, ":9999"},
		{"bms_server.failure_rate", cfg.BMSServer.FailureRate, 0.2},
	}
	for _, c := range checks {
		assert.Equal(t, c.want, c.got, c.name)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "config.json", `{}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Simulation.Floors)
	assert.Equal(t, 3, cfg.Simulation.Robots.Total())
	assert.Equal(t, "simulated", cfg.Fees.Source)
	assert.Equal(t, "memory", cfg.Fees.Cache)
	assert.Equal(t, 1.5, cfg.Fees.Pricing.BaseFee)
	assert.Equal(t, "jsonl", cfg.DeliveryLog.Backend)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Empty(t, cfg.MQTT.Broker)
	assert.Equal(t, ":8090", cfg.BMSServer.Addr)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "simulation:\n  seed: 1\n")
	t.Setenv("K_SIMULATION__SEED", "42")
	t.Setenv("K_FEES__SOURCE", "fixed")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, "fixed", cfg.Fees.Source)
}

func TestLoadRejectsInvalidSections(t *testing.T) {
	path := writeConfig(t, "config.yaml", `simulation:
  floors: 5
  mailroom_floor: 7
fees:
  source: http
logging:
  level: loud
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulation")
	assert.Contains(t, err.Error(), "url is required")
	assert.Contains(t, err.Error(), "logging")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoggingApply(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APP_ENV", "")
	LoggingConfig{Level: "Warn", Format: "console"}.Apply()
	assert.Equal(t, "warn", os.Getenv("LOG_LEVEL"))
	assert.Equal(t, "dev", os.Getenv("APP_ENV"))
}
