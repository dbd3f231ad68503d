package config

import (
	"errors"

	"github.com/kilianp07/automail/infra/mqtt"
)

// MQTTConfig enables publication of deliveries and robot state changes.
type MQTTConfig struct {
	Enabled     bool `json:"enabled"`
	mqtt.Config `json:",squash"`
}

// SetDefaults applies sane defaults.
func (c *MQTTConfig) SetDefaults() {
	if !c.Enabled {
		return
	}
	if c.Broker == "" {
		c.Broker = "tcp://localhost:1883"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "automail"
	}
}

// Validate checks mandatory fields.
func (c MQTTConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.UseTLS && (c.ClientCert == "") != (c.ClientKey == "") {
		return errors.New("client_cert and client_key must be set together")
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 {
		return errors.New("max_retries and backoff_ms must not be negative")
	}
	return nil
}
