package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/harborops/recvplan/core/events"
	"github.com/harborops/recvplan/infra/logger"
	"github.com/harborops/recvplan/internal/eventbus"
)

// Config holds the MQTT broker settings for the yard notifier.
type Config struct {
	Enabled     bool        `json:"enabled"`
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
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "recvplan"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "cfs"
	}
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

// pahoClient is the subset of the Paho client used by the notifier.
type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Notifier pushes plan lifecycle and container action events to yard-gate
// displays and tally terminals. It observes the event bus; the engine itself
// never talks to the broker.
type Notifier struct {
	cli    pahoClient
	prefix string
	qos    byte
	log    logger.Logger
}

// NewNotifier connects to the broker described by cfg.
func NewNotifier(cfg Config) (*Notifier, error) {
	log := logger.New("mqtt-notifier")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &Notifier{cli: cli, prefix: cfg.TopicPrefix, qos: cfg.QoS, log: log}, nil
}

// Run consumes events from the bus and publishes them until the context is
// canceled or the bus closes.
func (n *Notifier) Run(ctx context.Context, bus eventbus.Bus) {
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			n.publish(ev)
		case <-ctx.Done():
			return
		}
	}
}

func (n *Notifier) publish(ev events.Event) {
	var topic string
	switch e := ev.(type) {
	case events.PlanTransitionEvent:
		topic = fmt.Sprintf("%s/plans/%s/status", n.prefix, e.PlanID)
	case events.ContainerActionEvent:
		topic = fmt.Sprintf("%s/plans/%s/containers", n.prefix, e.PlanID)
	default:
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		n.log.Errorf("marshal %s: %v", ev.EventName(), err)
		return
	}
	token := n.cli.Publish(topic, n.qos, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		n.log.Errorf("publish %s: %v", topic, token.Error())
	}
}

// Close disconnects from the broker.
func (n *Notifier) Close() {
	if n.cli != nil && n.cli.IsConnected() {
		n.cli.Disconnect(250)
	}
}
