// Package modem implements the tracker's modem on a Linux host whose
// cellular link is managed by the operating system, with SMS delivered over
// an MQTT SMS bridge.
package modem

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// UnknownSignal is the CSQ value reported when quality cannot be read.
const UnknownSignal = 99

// maxBody bounds how much of a response is kept.
const maxBody = 1024

// ErrNotConnected is returned by PostJSON while the bearer is down.
var ErrNotConnected = errors.New("bearer not connected")

// Config configures a Host modem.
type Config struct {
	// Interface, when set, must be up for Connect to succeed.
	Interface string
	// SignalFile holds the last CSQ value.
	SignalFile string
	// IMEI overrides the HAL identity.
	IMEI        string
	HTTPTimeout time.Duration
}

// Host implements core.Modem. It is driven from the scheduler goroutine
// only; the inbox is the single piece shared with the SMS bridge.
type Host struct {
	cfg   Config
	hal   core.HAL
	inbox *Inbox
	http  *http.Client

	// interfaceUp is replaced in tests.
	interfaceUp func(name string) error

	apn       string
	connected bool

	log log.Logger
}

var _ core.Modem = (*Host)(nil)

// NewHost returns a Host. inbox may be nil when no SMS bridge is configured.
func NewHost(cfg Config, hal core.HAL, inbox *Inbox) *Host {
	if inbox == nil {
		inbox = NewInbox(1)
	}
	return &Host{
		cfg:         cfg,
		hal:         hal,
		inbox:       inbox,
		http:        &http.Client{Timeout: cfg.HTTPTimeout},
		interfaceUp: interfaceUp,
		log:         log.WithName("modem"),
	}
}

// Connect brings the bearer up once. The OS owns the link; this only
// verifies the configured interface is usable.
func (h *Host) Connect(_ context.Context, apn string) error {
	if h.cfg.Interface != "" {
		if err := h.interfaceUp(h.cfg.Interface); err != nil {
			h.connected = false
			return err
		}
	}
	h.apn = apn
	h.connected = true
	h.log.Debug("Bearer up", "apn", apn, "interface", h.cfg.Interface)
	return nil
}

func (h *Host) IsConnected() bool {
	return h.connected
}

// PostJSON posts body and returns the status and the start of the response.
func (h *Host) PostJSON(ctx context.Context, url string, body []byte, contentType string) (core.Result, error) {
	if !h.connected {
		return core.Result{}, ErrNotConnected
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return core.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if id := core.RequestIDFromContext(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := h.http.Do(req)
	if err != nil {
		return core.Result{}, fmt.Errorf("post %s: %w", url, err)
	}
	defer resp.Body.Close()

	head, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return core.Result{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}
	return core.Result{StatusCode: resp.StatusCode, Body: string(head)}, nil
}

// Close drops the bearer and any idle HTTP connections.
func (h *Host) Close() error {
	if !h.connected {
		return ErrNotConnected
	}
	h.connected = false
	h.http.CloseIdleConnections()
	return nil
}

// SignalQuality returns the CSQ value from the signal file, UnknownSignal
// when it is missing or out of range.
func (h *Host) SignalQuality() int {
	csq := UnknownSignal
	if h.cfg.SignalFile != "" {
		if b, err := os.ReadFile(h.cfg.SignalFile); err == nil {
			if v, err := strconv.Atoi(strings.TrimSpace(string(b))); err == nil && v >= 0 && v <= 31 {
				csq = v
			}
		}
	}
	metrics.SignalQuality.Set(float64(csq))
	return csq
}

// IMEI returns the configured identity, falling back to the HAL.
func (h *Host) IMEI() string {
	if h.cfg.IMEI != "" {
		return h.cfg.IMEI
	}
	return h.hal.IMEI()
}

func (h *Host) PollCommand() (core.Command, bool) {
	return h.inbox.Pop()
}

// ResetSoft pulses the modem reset line. The bearer is down afterwards.
func (h *Host) ResetSoft() error {
	h.connected = false
	if err := h.hal.PulseModemReset(); err != nil {
		return fmt.Errorf("modem reset: %w", err)
	}
	return nil
}

// ResetFull reboots the device. It only returns on failure.
func (h *Host) ResetFull() error {
	return h.hal.Reboot()
}

func interfaceUp(name string) error {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return fmt.Errorf("interface %s: %w", name, err)
	}
	if ifi.Flags&net.FlagUp == 0 {
		return fmt.Errorf("interface %s is down", name)
	}
	return nil
}
