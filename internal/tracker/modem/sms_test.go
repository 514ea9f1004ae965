package modem

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/mqtt"
	"github.com/autopeer-io/seatrack/pkg/mqtt/topic"
)

func TestParseSMS(t *testing.T) {
	tests := []struct {
		name string
		msg  SMS
		want core.Command
		ok   bool
	}{
		{
			name: "name and value",
			msg:  SMS{From: "+4799999999", Text: "MMSI 257123456"},
			want: core.Command{Sender: "+4799999999", Name: "mmsi", Value: "257123456"},
			ok:   true,
		},
		{
			name: "value keeps inner spaces and case",
			msg:  SMS{From: "+47A", Text: "  shipname   Black Pearl \n"},
			want: core.Command{Sender: "+47A", Name: "shipname", Value: "Black Pearl"},
			ok:   true,
		},
		{
			name: "equals separator",
			msg:  SMS{From: "+47A", Text: "callsign=LA1234"},
			want: core.Command{Sender: "+47A", Name: "callsign", Value: "LA1234"},
			ok:   true,
		},
		{
			name: "name only",
			msg:  SMS{From: " +47A ", Text: "Reset"},
			want: core.Command{Sender: "+47A", Name: "reset"},
			ok:   true,
		},
		{
			name: "empty",
			msg:  SMS{From: "+47A", Text: "   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSMS(tt.msg)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseSMS() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestInbox_HandlerAndBound(t *testing.T) {
	inbox := NewInbox(2)
	h := inbox.Handler()

	h(context.Background(), "t", []byte(`{"from":"+47A","text":"mmsi 1"}`))
	h(context.Background(), "t", []byte(`not json`))
	h(context.Background(), "t", []byte(`{"from":"+47A","text":""}`))
	h(context.Background(), "t", []byte(`{"from":"+47A","text":"mmsi 2"}`))
	h(context.Background(), "t", []byte(`{"from":"+47A","text":"mmsi 3"}`))

	if n := inbox.Len(); n != 2 {
		t.Fatalf("Len() = %d, want 2", n)
	}
	for _, want := range []string{"1", "2"} {
		cmd, ok := inbox.Pop()
		if !ok || cmd.Value != want {
			t.Errorf("Pop() = %+v, %v; want value %s", cmd, ok, want)
		}
	}
	if _, ok := inbox.Pop(); ok {
		t.Error("Pop() on drained inbox returned a command")
	}
}

type published struct {
	topic   string
	retain  bool
	payload []byte
	// connection and publish contexts were both live
	live bool
}

type fakeClient struct {
	started    bool
	conn       context.Context
	subscribed map[string]mqtt.MessageHandler
	published  []published
	disconnect bool
	// connection context was live when Disconnect ran
	liveAtDisconnect bool
	// notified on every publish
	pubs chan struct{}
}

var _ mqtt.Client = (*fakeClient)(nil)

func (c *fakeClient) Start(ctx context.Context) error {
	c.started, c.conn = true, ctx
	return nil
}

func (c *fakeClient) Disconnect(context.Context) {
	c.disconnect = true
	c.liveAtDisconnect = c.conn.Err() == nil
}

func (c *fakeClient) AwaitConnection(context.Context) error { return nil }
func (c *fakeClient) IsConnected() bool                     { return c.started && !c.disconnect }
func (c *fakeClient) Unsubscribe(_ context.Context, topic string) error {
	delete(c.subscribed, topic)
	return nil
}

func (c *fakeClient) Publish(ctx context.Context, topic string, _ int, retain bool, payload []byte) error {
	live := ctx.Err() == nil && c.conn.Err() == nil
	c.published = append(c.published, published{topic: topic, retain: retain, payload: payload, live: live})
	select {
	case c.pubs <- struct{}{}:
	default:
	}
	return nil
}

func (c *fakeClient) Subscribe(_ context.Context, topic string, _ int, h mqtt.MessageHandler) error {
	if c.subscribed == nil {
		c.subscribed = map[string]mqtt.MessageHandler{}
	}
	c.subscribed[topic] = h
	return nil
}

func TestBridge_Start(t *testing.T) {
	client := &fakeClient{pubs: make(chan struct{}, 2)}
	inbox := NewInbox(4)
	topics := topic.NewBuilder("seatrack/v1/")
	b := NewBridge(client, topics, "356938035643809", inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	// The bridge subscribes before it announces presence.
	<-client.pubs
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	h, ok := client.subscribed["seatrack/v1/sms/inbox/356938035643809"]
	if !ok {
		t.Fatalf("subscriptions = %v", client.subscribed)
	}
	h(context.Background(), "", []byte(`{"from":"+47A","text":"reset"}`))
	if cmd, ok := inbox.Pop(); !ok || cmd.Name != "reset" {
		t.Errorf("inbox got %+v, %v", cmd, ok)
	}

	if len(client.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(client.published))
	}
	for i, want := range []bool{true, false} {
		p := client.published[i]
		var presence Presence
		if err := json.Unmarshal(p.payload, &presence); err != nil {
			t.Fatal(err)
		}
		if p.topic != "seatrack/v1/online/356938035643809" || !p.retain || presence.Online != want {
			t.Errorf("presence %d = %s %v %+v", i, p.topic, p.retain, presence)
		}
	}
	if !client.disconnect {
		t.Error("client not disconnected")
	}
}

func TestBridge_OfflinePresenceOutlivesCancel(t *testing.T) {
	client := &fakeClient{pubs: make(chan struct{}, 2)}
	b := NewBridge(client, topic.NewBuilder("seatrack/v1"), "42", NewInbox(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	<-client.pubs
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(client.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(client.published))
	}
	if offline := client.published[1]; !offline.live {
		t.Error("offline presence published on a cancelled connection")
	}
	if !client.liveAtDisconnect {
		t.Error("connection torn down before Disconnect")
	}
	if client.conn.Err() == nil {
		t.Error("connection context still live after Start returned")
	}
}

func TestWill(t *testing.T) {
	topicName, payload := Will(topic.NewBuilder("seatrack/v1"), "42")

	if topicName != "seatrack/v1/online/42" {
		t.Errorf("topic = %s", topicName)
	}
	var p Presence
	if err := json.Unmarshal(payload, &p); err != nil || p.Online || p.IMEI != "42" {
		t.Errorf("payload = %s (%v)", payload, err)
	}
}
