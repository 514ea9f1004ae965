package modem

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/autopeer-io/seatrack/internal/pkg/mqtt/paths"
	"github.com/autopeer-io/seatrack/pkg/log"
	"github.com/autopeer-io/seatrack/pkg/mqtt"
	"github.com/autopeer-io/seatrack/pkg/mqtt/topic"
)

// Presence is published retained on {root}/online/{imei}.
type Presence struct {
	IMEI   string `json:"imei"`
	Online bool   `json:"online"`
}

// Bridge receives the tracker's SMS from an MQTT SMS gateway and queues them
// in an Inbox.
type Bridge struct {
	client mqtt.Client
	topics *topic.Builder
	imei   string
	inbox  *Inbox
	log    log.Logger
}

// NewBridge returns a Bridge for the tracker identified by imei.
func NewBridge(client mqtt.Client, topics *topic.Builder, imei string, inbox *Inbox) *Bridge {
	return &Bridge{
		client: client,
		topics: topics,
		imei:   imei,
		inbox:  inbox,
		log:    log.WithName("sms-bridge"),
	}
}

// Will returns the last will to configure on the client: an offline
// presence message.
func Will(topics *topic.Builder, imei string) (string, []byte) {
	payload, _ := json.Marshal(Presence{IMEI: imei, Online: false})
	return topics.Build(paths.Online, imei), payload
}

// presenceTimeout bounds the offline announcement on shutdown.
const presenceTimeout = 5 * time.Second

// Start connects, subscribes to the inbox topic and blocks until ctx is done.
// The connection outlives ctx until the offline presence is out: a clean
// disconnect suppresses the last will, so nothing else would clear the
// retained online flag.
func (b *Bridge) Start(ctx context.Context) error {
	connCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	defer stop()

	if err := b.client.Start(connCtx); err != nil {
		return fmt.Errorf("start mqtt client: %w", err)
	}
	defer b.client.Disconnect(connCtx)

	if err := b.client.AwaitConnection(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("await mqtt connection: %w", err)
	}

	inboxTopic := b.topics.Build(paths.SMSInbox, b.imei)
	if err := b.client.Subscribe(ctx, inboxTopic, 1, b.inbox.Handler()); err != nil {
		return fmt.Errorf("subscribe %s: %w", inboxTopic, err)
	}
	b.publishPresence(ctx, true)
	b.log.Info("SMS bridge ready", "topic", inboxTopic)

	<-ctx.Done()

	pubCtx, cancel := context.WithTimeout(connCtx, presenceTimeout)
	defer cancel()
	b.publishPresence(pubCtx, false)
	return nil
}

func (b *Bridge) publishPresence(ctx context.Context, online bool) {
	payload, err := json.Marshal(Presence{IMEI: b.imei, Online: online})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, b.topics.Build(paths.Online, b.imei), 1, true, payload); err != nil {
		b.log.Warn("Failed to publish presence", "online", online, "err", err)
	}
}
