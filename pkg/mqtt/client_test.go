package mqtt

import (
	"context"
	"testing"

	"github.com/eclipse/paho.golang/paho"
)

func TestTopicsMatch(t *testing.T) {
	cases := []struct {
		filter, topic string
		want          bool
	}{
		{"seatrack/v1/sms/inbox/123", "seatrack/v1/sms/inbox/123", true},
		{"seatrack/v1/sms/inbox/+", "seatrack/v1/sms/inbox/123", true},
		{"seatrack/v1/sms/inbox/+", "seatrack/v1/sms/inbox/123/x", false},
		{"seatrack/v1/#", "seatrack/v1/sms/inbox/123", true},
		{"seatrack/v1/sms/inbox/123", "seatrack/v1/sms/inbox/456", false},
		{"seatrack/+/online/1", "seatrack/v1/online", false},
		{"seatrack/v1/#", "seatrack/v1", true},
		{"seatrack/v1/online/+", "seatrack/v1/online", false},
	}
	for _, tc := range cases {
		if got := topicsMatch(tc.filter, tc.topic); got != tc.want {
			t.Errorf("topicsMatch(%q, %q)=%v want %v", tc.filter, tc.topic, got, tc.want)
		}
	}
}

func TestRoute_DispatchesToMatchingHandlers(t *testing.T) {
	cl, err := NewClient(&ClientConfig{BrokerURL: "tcp://127.0.0.1:1883"})
	if err != nil {
		t.Fatal(err)
	}
	c := cl.(*pahoClient)

	var inbox, presence []string
	c.subs["seatrack/v1/sms/inbox/42"] = subscription{handler: func(_ context.Context, topic string, payload []byte) {
		inbox = append(inbox, string(payload))
	}}
	c.subs["seatrack/v1/online/+"] = subscription{handler: func(_ context.Context, topic string, _ []byte) {
		presence = append(presence, topic)
	}}

	for _, p := range []*paho.Publish{
		{Topic: "seatrack/v1/sms/inbox/42", Payload: []byte(`{"text":"reset"}`)},
		{Topic: "seatrack/v1/online/42", Payload: []byte(`{}`)},
		{Topic: "seatrack/v1/sms/inbox/7", Payload: []byte(`{}`)},
	} {
		if ok, err := c.route(paho.PublishReceived{Packet: p}); !ok || err != nil {
			t.Fatalf("route(%s) = %v, %v", p.Topic, ok, err)
		}
	}

	if len(inbox) != 1 || inbox[0] != `{"text":"reset"}` {
		t.Errorf("inbox handler got %v", inbox)
	}
	if len(presence) != 1 || presence[0] != "seatrack/v1/online/42" {
		t.Errorf("presence handler got %v", presence)
	}
}

func TestWillMessage(t *testing.T) {
	c := &pahoClient{cfg: &ClientConfig{}}
	if c.willMessage() != nil {
		t.Fatal("will set without a topic")
	}

	c.cfg = &ClientConfig{WillTopic: "seatrack/v1/online/42", WillPayload: []byte(`{"online":false}`), WillQoS: 1, WillRetain: true}
	w := c.willMessage()
	if w == nil || w.Topic != "seatrack/v1/online/42" || w.QoS != 1 || !w.Retain {
		t.Fatalf("willMessage() = %+v", w)
	}
}

func TestNotStarted(t *testing.T) {
	cl, err := NewClient(&ClientConfig{BrokerURL: "tcp://127.0.0.1:1883"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := cl.Publish(ctx, "t", 1, false, nil); err != errNotStarted {
		t.Errorf("Publish() error = %v", err)
	}
	if err := cl.Subscribe(ctx, "t", 1, nil); err != errNotStarted {
		t.Errorf("Subscribe() error = %v", err)
	}
	if err := cl.AwaitConnection(ctx); err != errNotStarted {
		t.Errorf("AwaitConnection() error = %v", err)
	}
	cl.Disconnect(ctx)
}

func TestNewClient_Validates(t *testing.T) {
	if _, err := NewClient(nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
	if _, err := NewClient(&ClientConfig{BrokerURL: "not a url"}); err == nil {
		t.Fatalf("expected error for bad broker url")
	}

	cfg := &ClientConfig{BrokerURL: "tcp://127.0.0.1:1883"}
	c, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if cfg.KeepAlive != 60 || cfg.ConnectTimeout == 0 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if c.IsConnected() {
		t.Fatalf("client must not report connected before Start")
	}
}
