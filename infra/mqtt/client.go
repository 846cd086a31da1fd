package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/d1vyadharsh1n1/MetroX/core/monitoring"
	"github.com/d1vyadharsh1n1/MetroX/infra/logger"
)

// DefaultTopicPrefix roots every topic published by the notifier.
const DefaultTopicPrefix = "metrox"

// Config defines the connection parameters for the Paho MQTT client. An
// empty Broker disables MQTT.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	AuthMethod  string      `json:"auth_method"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	LWTQoS      byte        `json:"lwt_qos"`
	LWTRetain   bool        `json:"lwt_retain"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	// AcceptInput subscribes to <prefix>/input so depot terminals can answer
	// prompts of the running plan.
	AcceptInput bool        `json:"accept_input"`
	TLSConfig   *tls.Config `json:"-"`
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "metrox-control-plane"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
	if c.LWTTopic == "" {
		c.LWTTopic = c.TopicPrefix + "/status"
		c.LWTPayload = "offline"
		c.LWTRetain = true
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt: qos must be 0, 1 or 2")
	}
	switch c.AuthMethod {
	case "", "username_password", "tls", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %q", c.AuthMethod)
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// InputFunc receives operator answers sent over MQTT.
type InputFunc func(value string, custom bool) error

// PahoClient publishes control-plane notifications and optionally relays
// operator input.
type PahoClient struct {
	cli    pahoClient
	cfg    Config
	logger logger.Logger

	mu      sync.RWMutex
	onInput InputFunc
}

// NewPahoClient connects to the broker.
func NewPahoClient(cfg Config) (*PahoClient, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_client")
	pc := &PahoClient{cfg: cfg, logger: log}

	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(cfg.LWTTopic, cfg.LWTQoS, cfg.LWTRetain, "online"); token.Wait() && token.Error() != nil {
			log.Warnf("publish online status: %v", token.Error())
		}
		if cfg.AcceptInput {
			if token := c.Subscribe(pc.InputTopic(), cfg.QoS, pc.onMessage); token.Wait() && token.Error() != nil {
				log.Errorf("subscribe error: %v", token.Error())
			}
		}
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
	pc.cli = c
	return pc, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
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

// InputTopic is where operator answers are accepted.
func (p *PahoClient) InputTopic() string { return p.cfg.TopicPrefix + "/input" }

// ScheduleTopic carries the latest installed schedule summary.
func (p *PahoClient) ScheduleTopic() string { return p.cfg.TopicPrefix + "/schedule" }

// RunTopic carries run lifecycle changes.
func (p *PahoClient) RunTopic() string { return p.cfg.TopicPrefix + "/run" }

// OverrideTopic is the per-depot override feed.
func (p *PahoClient) OverrideTopic(depot string) string {
	if depot == "" {
		depot = "unknown"
	}
	return p.cfg.TopicPrefix + "/depot/" + slug(depot) + "/override"
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

// OnInput registers the handler for messages on InputTopic.
func (p *PahoClient) OnInput(fn InputFunc) {
	p.mu.Lock()
	p.onInput = fn
	p.mu.Unlock()
}

func (p *PahoClient) onMessage(_ paho.Client, msg paho.Message) {
	var m struct {
		Value  string `json:"value"`
		Custom bool   `json:"custom"`
	}
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		p.logger.Errorf("failed to decode input: %v", err)
		return
	}
	p.mu.RLock()
	fn := p.onInput
	p.mu.RUnlock()
	if fn == nil {
		p.logger.Warnf("input received but no handler registered")
		return
	}
	if err := fn(m.Value, m.Custom); err != nil {
		p.logger.Warnf("input %q rejected: %v", m.Value, err)
		return
	}
	p.logger.Infof("input %q relayed", m.Value)
}

// Publish marshals v to JSON and publishes it, retrying with exponential
// backoff.
func (p *PahoClient) Publish(topic string, v any, retained bool) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	backoff := time.Duration(p.cfg.BackoffMS) * time.Millisecond
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published to %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.cfg.MaxRetries {
			time.Sleep(backoff * time.Duration(1<<attempt))
		}
	}
	err = errors.Join(ErrPublish, publishErr)
	monitoring.CaptureException(err, map[string]string{"module": "mqtt", "topic": topic})
	return err
}

// Disconnect publishes the offline status and closes the connection.
func (p *PahoClient) Disconnect() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Publish(p.cfg.LWTTopic, p.cfg.LWTQoS, p.cfg.LWTRetain, p.cfg.LWTPayload).Wait()
		p.cli.Disconnect(250)
	}
}
