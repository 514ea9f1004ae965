package mqtt

import (
	"context"
)

// MessageHandler receives one message from a subscribed topic. It runs on the
// client's reader goroutine, so it should hand the payload off (the SMS inbox
// queues it) rather than process it in place.
type MessageHandler func(ctx context.Context, topic string, payload []byte)

// Client is what the tracker needs from an MQTT broker: one long-lived
// connection to the SMS bridge that survives cellular dropouts.
type Client interface {
	// Start connects in the background and keeps reconnecting until ctx ends
	// or Disconnect is called. Use AwaitConnection to wait for the link.
	Start(ctx context.Context) error

	// Disconnect closes the connection cleanly. The broker does not publish
	// the last will after a clean disconnect.
	Disconnect(ctx context.Context)

	// Publish sends payload to topic. Retained messages carry state such as
	// presence that late subscribers must see.
	Publish(ctx context.Context, topic string, qos int, retain bool, payload []byte) error

	// Subscribe routes messages matching the topic filter to handler. The
	// subscription is restored after every reconnect.
	Subscribe(ctx context.Context, topic string, qos int, handler MessageHandler) error

	// Unsubscribe drops the filter and its handler.
	Unsubscribe(ctx context.Context, topic string) error

	// AwaitConnection blocks until the broker accepted the connection or ctx ends.
	AwaitConnection(ctx context.Context) error

	// IsConnected reports the last known link state.
	IsConnected() bool
}
