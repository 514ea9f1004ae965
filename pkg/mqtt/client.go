package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eclipse/paho.golang/autopaho"
	"github.com/eclipse/paho.golang/paho"

	"github.com/autopeer-io/seatrack/pkg/log"
)

// reconnectPause is the constant backoff between broker connection attempts.
// Cellular links drop often; the tracker keeps retrying at a steady pace.
const reconnectPause = 3 * time.Second

var errNotStarted = errors.New("mqtt client not started")

type subscription struct {
	qos     byte
	handler MessageHandler
}

type pahoClient struct {
	cfg *ClientConfig
	cm  *autopaho.ConnectionManager
	log log.Logger

	mu   sync.RWMutex
	subs map[string]subscription // keyed by topic filter

	connected atomic.Bool
}

// NewClient returns a Client for cfg. Defaults are applied to cfg in place.
func NewClient(cfg *ClientConfig) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mqtt config is required")
	}

	setDefaultConfig(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mqtt config: %w", err)
	}

	return &pahoClient{
		cfg:  cfg,
		log:  log.WithName("mqtt"),
		subs: map[string]subscription{},
	}, nil
}

func (c *pahoClient) connectionConfig() autopaho.ClientConfig {
	broker, _ := url.Parse(c.cfg.BrokerURL) // validated in NewClient

	return autopaho.ClientConfig{
		ServerUrls:                    []*url.URL{broker},
		KeepAlive:                     c.cfg.KeepAlive,
		CleanStartOnInitialConnection: c.cfg.CleanStart,
		SessionExpiryInterval:         c.cfg.SessionExpiry,
		ReconnectBackoff:              autopaho.NewConstantBackoff(reconnectPause),
		ConnectTimeout:                c.cfg.ConnectTimeout,
		ConnectUsername:               c.cfg.Username,
		ConnectPassword:               []byte(c.cfg.Password),
		TlsCfg:                        &tls.Config{InsecureSkipVerify: c.cfg.InsecureSkipVerify},
		WillMessage:                   c.willMessage(),
		OnConnectionUp:                c.onConnectionUp,
		OnConnectError:                c.onConnectError,
		ClientConfig: paho.ClientConfig{
			ClientID:           c.cfg.ClientID,
			OnClientError:      c.onClientError,
			OnServerDisconnect: c.onServerDisconnect,
			OnPublishReceived:  []func(paho.PublishReceived) (bool, error){c.route},
		},
	}
}

// Start begins connecting in the background. The connection lives until
// ctx is cancelled or Disconnect is called.
func (c *pahoClient) Start(ctx context.Context) error {
	c.log.Info("Connecting to SMS bridge broker", "broker", c.cfg.BrokerURL, "clientID", c.cfg.ClientID)

	cm, err := autopaho.NewConnection(ctx, c.connectionConfig())
	if err != nil {
		return err
	}
	c.cm = cm
	return nil
}

func (c *pahoClient) Disconnect(ctx context.Context) {
	if c.cm == nil {
		return
	}
	if err := c.cm.Disconnect(ctx); err != nil {
		c.log.Debug("Disconnect from broker", "err", err)
	}
	c.connected.Store(false)
	c.log.Info("Disconnected from SMS bridge broker")
}

func (c *pahoClient) Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error {
	if c.cm == nil {
		return errNotStarted
	}
	_, err := c.cm.Publish(ctx, &paho.Publish{
		Topic:   topic,
		QoS:     byte(qos),
		Retain:  retain,
		Payload: payload,
	})
	return err
}

func (c *pahoClient) Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error {
	if c.cm == nil {
		return errNotStarted
	}

	// Recorded before sending so a reconnect in between still re-subscribes.
	c.mu.Lock()
	c.subs[topic] = subscription{qos: byte(qos), handler: handler}
	c.mu.Unlock()

	if err := c.sendSubscribe(ctx, c.cm, topic, byte(qos)); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	c.log.Info("Subscribed", "topic", topic, "qos", qos)
	return nil
}

func (c *pahoClient) Unsubscribe(ctx context.Context, topic string) error {
	if c.cm == nil {
		return errNotStarted
	}

	c.mu.Lock()
	delete(c.subs, topic)
	c.mu.Unlock()

	_, err := c.cm.Unsubscribe(ctx, &paho.Unsubscribe{Topics: []string{topic}})
	return err
}

func (c *pahoClient) AwaitConnection(ctx context.Context) error {
	if c.cm == nil {
		return errNotStarted
	}
	return c.cm.AwaitConnection(ctx)
}

func (c *pahoClient) IsConnected() bool {
	return c.connected.Load()
}

func (c *pahoClient) sendSubscribe(ctx context.Context, cm *autopaho.ConnectionManager, topic string, qos byte) error {
	_, err := cm.Subscribe(ctx, &paho.Subscribe{
		Subscriptions: []paho.SubscribeOptions{{Topic: topic, QoS: qos}},
	})
	return err
}

// onConnectionUp restores the subscriptions. A session the broker kept may
// already hold them; subscribing again is harmless.
func (c *pahoClient) onConnectionUp(cm *autopaho.ConnectionManager, _ *paho.Connack) {
	c.connected.Store(true)
	c.log.Info("Connected to SMS bridge broker")

	c.mu.RLock()
	defer c.mu.RUnlock()
	for topic, sub := range c.subs {
		if err := c.sendSubscribe(context.Background(), cm, topic, sub.qos); err != nil {
			c.log.Error(err, "Re-subscribe failed", "topic", topic)
		}
	}
}

func (c *pahoClient) onConnectError(err error) {
	c.connected.Store(false)
	c.log.Warn("Broker unreachable, retrying", "err", err, "pause", reconnectPause)
}

func (c *pahoClient) onClientError(err error) {
	c.connected.Store(false)
	c.log.Error(err, "MQTT client error")
}

func (c *pahoClient) onServerDisconnect(d *paho.Disconnect) {
	c.connected.Store(false)
	reason := ""
	if d.Properties != nil {
		reason = d.Properties.ReasonString
	}
	c.log.Warn("Broker closed the connection", "code", d.ReasonCode, "reason", reason)
}

// route hands an incoming message to every handler whose filter matches.
// Handlers run on paho's reader goroutine.
func (c *pahoClient) route(p paho.PublishReceived) (bool, error) {
	topic := p.Packet.Topic

	c.mu.RLock()
	var handlers []MessageHandler
	for filter, sub := range c.subs {
		if topicsMatch(filter, topic) {
			handlers = append(handlers, sub.handler)
		}
	}
	c.mu.RUnlock()

	if len(handlers) == 0 {
		c.log.Debug("Message on unhandled topic", "topic", topic)
	}
	for _, h := range handlers {
		h(context.Background(), topic, p.Packet.Payload)
	}
	return true, nil
}

func (c *pahoClient) willMessage() *paho.WillMessage {
	if c.cfg.WillTopic == "" {
		return nil
	}
	return &paho.WillMessage{
		Topic:   c.cfg.WillTopic,
		Payload: c.cfg.WillPayload,
		QoS:     c.cfg.WillQoS,
		Retain:  c.cfg.WillRetain,
	}
}

// topicsMatch reports whether topic matches filter, honouring the single
// level (+) and multi level (#) wildcards.
func topicsMatch(filter, topic string) bool {
	for {
		fl, frest, fmore := strings.Cut(filter, "/")
		if fl == "#" {
			return true
		}
		tl, trest, tmore := strings.Cut(topic, "/")
		if fl != "+" && fl != tl {
			return false
		}
		if !fmore || !tmore {
			// Both must end on the same level, except "a/#" also matches "a".
			return fmore == tmore || (fmore && frest == "#")
		}
		filter, topic = frest, trest
	}
}
