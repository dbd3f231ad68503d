package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/automail/core/delivery"
	"github.com/kilianp07/automail/core/events"
	coremqtt "github.com/kilianp07/automail/core/mqtt"
	"github.com/kilianp07/automail/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	TopicPrefix string          `json:"topic_prefix"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	LWTTopic    string          `json:"lwt_topic"`
	LWTPayload  string          `json:"lwt_payload"`
	LWTQoS      byte            `json:"lwt_qos"`
	LWTRetain   bool            `json:"lwt_retain"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// PahoPublisher implements coremqtt.Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli        pahoClient
	prefix     string
	qos        map[string]byte
	logger     logger.Logger
	maxRetries int
	backoff    time.Duration
}

var _ coremqtt.Publisher = (*PahoPublisher)(nil)

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// NewPahoPublisher connects to the MQTT broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	pp := &PahoPublisher{
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		logger:     log,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	if pp.prefix == "" {
		pp.prefix = "automail"
	}
	if pp.maxRetries <= 0 {
		pp.maxRetries = 3
	}
	if pp.backoff <= 0 {
		pp.backoff = 100 * time.Millisecond
	}

	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	pp.cli = c
	return pp, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "automail-" + uuid.NewString()[:8]
	}
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(clientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// DeliveryMessage is the payload published for each delivery.
type DeliveryMessage struct {
	MessageID string   `json:"message_id"`
	Tick      int      `json:"tick"`
	RobotID   string   `json:"robot_id"`
	Variant   string   `json:"variant"`
	ItemID    string   `json:"item_id"`
	Floor     int      `json:"floor"`
	Weight    int      `json:"weight"`
	Delay     int      `json:"delay"`
	Fee       *float64 `json:"fee,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

// StateMessage is the payload published for each robot state change.
type StateMessage struct {
	MessageID string `json:"message_id"`
	Tick      int    `json:"tick"`
	RobotID   string `json:"robot_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	Floor     int    `json:"floor"`
	Timestamp int64  `json:"timestamp"`
}

// PublishDelivery sends the record to <prefix>/robot/<id>/delivery.
func (p *PahoPublisher) PublishDelivery(rec delivery.Record) (string, error) {
	msg := DeliveryMessage{
		MessageID: uuid.NewString(),
		Tick:      rec.Tick,
		RobotID:   rec.RobotID,
		Variant:   rec.Variant,
		ItemID:    rec.Item.ID,
		Floor:     rec.Item.DestinationFloor,
		Weight:    rec.Item.Weight,
		Delay:     rec.Delay(),
		Timestamp: time.Now().UnixMilli(),
	}
	if rec.Fee != nil {
		total := rec.Fee.TotalCost
		msg.Fee = &total
	}
	return msg.MessageID, p.publish(p.topic(rec.RobotID, "delivery"), "delivery", msg)
}

// PublishState sends the transition to <prefix>/robot/<id>/state.
func (p *PahoPublisher) PublishState(ev events.StateEvent) (string, error) {
	msg := StateMessage{
		MessageID: uuid.NewString(),
		Tick:      ev.Tick,
		RobotID:   ev.RobotID,
		From:      ev.From,
		To:        ev.To,
		Floor:     ev.Floor,
		Timestamp: time.Now().UnixMilli(),
	}
	return msg.MessageID, p.publish(p.topic(ev.RobotID, "state"), "state", msg)
}

func (p *PahoPublisher) topic(robotID, kind string) string {
	return fmt.Sprintf("%s/robot/%s/%s", p.prefix, robotID, kind)
}

func (p *PahoPublisher) publish(topic, kind string, v any) error {
	if p.cli == nil || !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	qos := p.qos[kind]
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published %s on %s", kind, topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Disconnect gracefully closes the MQTT connection.
func (p *PahoPublisher) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
