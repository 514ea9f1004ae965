package modem

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
	"github.com/autopeer-io/seatrack/pkg/mqtt"
)

// SMS is one message as forwarded by the bridge.
type SMS struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// ParseSMS turns an SMS into a command. The first word, up to a space or
// '=', is the lower-cased command name; the rest of the text, trimmed, is the
// value. ok is false for an empty message.
func ParseSMS(msg SMS) (core.Command, bool) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return core.Command{}, false
	}

	name, value := text, ""
	if i := strings.IndexAny(text, " \t\r\n="); i >= 0 {
		name, value = text[:i], strings.TrimSpace(text[i+1:])
	}

	return core.Command{
		Sender: strings.TrimSpace(msg.From),
		Name:   strings.ToLower(name),
		Value:  value,
	}, true
}

// Inbox buffers received commands between two polls. It is filled from the
// MQTT reader goroutine and drained by the scheduler.
type Inbox struct {
	queue chan core.Command
	log   log.Logger
}

// NewInbox returns an Inbox holding at most size commands.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = 1
	}
	return &Inbox{
		queue: make(chan core.Command, size),
		log:   log.WithName("sms"),
	}
}

// Push queues cmd. It reports false, dropping cmd, when the inbox is full.
func (i *Inbox) Push(cmd core.Command) bool {
	select {
	case i.queue <- cmd:
		return true
	default:
		i.log.Warn("SMS inbox full, message dropped", "sender", cmd.Sender, "command", cmd.Name)
		return false
	}
}

// Pop returns the oldest queued command without waiting.
func (i *Inbox) Pop() (core.Command, bool) {
	select {
	case cmd := <-i.queue:
		return cmd, true
	default:
		return core.Command{}, false
	}
}

// Len returns the number of queued commands.
func (i *Inbox) Len() int {
	return len(i.queue)
}

// Handler decodes bridge payloads into the inbox.
func (i *Inbox) Handler() mqtt.MessageHandler {
	return func(_ context.Context, topic string, payload []byte) {
		var msg SMS
		if err := json.Unmarshal(payload, &msg); err != nil {
			i.log.Warn("Malformed SMS payload", "topic", topic, "err", err)
			return
		}
		cmd, ok := ParseSMS(msg)
		if !ok {
			i.log.Debug("Empty SMS ignored", "sender", msg.From)
			return
		}
		i.log.Debug("SMS received", "sender", cmd.Sender, "command", cmd.Name)
		i.Push(cmd)
	}
}
