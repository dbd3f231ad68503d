package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/automail/core/delivery/logging"
	"github.com/kilianp07/automail/core/metrics"
	"github.com/kilianp07/automail/infra/bms"
	"github.com/kilianp07/automail/simulation"
)

type Config struct {
	Simulation  simulation.Config `json:"simulation"`
	Fees        FeesConfig        `json:"fees"`
	Metrics     metrics.Config    `json:"metrics"`
	DeliveryLog logging.Config    `json:"delivery_log"`
	MQTT        MQTTConfig        `json:"mqtt"`
	Logging     LoggingConfig     `json:"logging"`
	BMSServer   bms.ServerConfig  `json:"bms_server"`
	KPI         KPIConfig         `json:"kpi"`
}

// KPIConfig locates the SQLite database keeping a summary of every run.
// An empty path disables it.
type KPIConfig struct {
	Path string `json:"path"`
}

// Load reads the configuration file at path. Environment variables prefixed
// with K_ override file values; a double underscore separates nested keys, so
// K_SIMULATION__SEED sets simulation.seed.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies the defaults of every section.
func (c *Config) SetDefaults() {
	c.Simulation.SetDefaults()
	c.Fees.SetDefaults()
	c.DeliveryLog.SetDefaults()
	c.MQTT.SetDefaults()
	c.Logging.SetDefaults()
	if c.BMSServer.Addr == "" {
		c.BMSServer.Addr = ":8090"
	}
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}
	if err := c.Fees.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fees: %w", err))
	}
	if err := c.DeliveryLog.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("delivery_log: %w", err))
	}
	if err := c.MQTT.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("mqtt: %w", err))
	}
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}
	if r := c.BMSServer.FailureRate; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("bms_server: failure_rate %v outside [0,1]", r))
	}
	return errors.Join(errs...)
}
