// Package hal is the tracker board: the modem reset line, the reboot path
// and the device identity.
package hal

import (
	"os"
	"strings"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// Identity sources, checked in this order.
const (
	IMEIEnv  = "SEATRACK_IMEI"
	IMEIFile = "/etc/seatrack/imei"
)

// Config describes the board wiring.
type Config struct {
	// ResetLine is the GPIO line name wired to the modem reset pin. Empty
	// disables the soft reset.
	ResetLine string
	// ResetPulse is how long the line is held low.
	ResetPulse time.Duration
	// IMEIFile overrides IMEIFile, mainly for tests.
	IMEIFile string
}

// Board implements core.HAL.
type Board struct {
	cfg   Config
	clock clock.Clock
	imei  string
	log   log.Logger
}

var _ core.HAL = (*Board)(nil)

// New returns the Board and resolves its identity once.
func New(cfg Config, clk clock.Clock) *Board {
	if cfg.IMEIFile == "" {
		cfg.IMEIFile = IMEIFile
	}
	b := &Board{
		cfg:   cfg,
		clock: clk,
		log:   log.WithName("hal"),
	}
	b.imei = readIMEI(os.Getenv(IMEIEnv), cfg.IMEIFile)
	return b
}

// IMEI returns the identity from the environment or the identity file, or ""
// when neither is set.
func (b *Board) IMEI() string {
	return b.imei
}

// PulseModemReset drives the reset line low for the configured pulse.
func (b *Board) PulseModemReset() error {
	if b.cfg.ResetLine == "" {
		b.log.Warn("No modem reset line configured, soft reset skipped")
		return nil
	}
	b.log.Info("Pulsing modem reset line", "line", b.cfg.ResetLine, "pulse", b.cfg.ResetPulse)
	return pulseLine(b.cfg.ResetLine, b.cfg.ResetPulse, b.clock)
}

// Reboot restarts the device. It returns only on failure.
func (b *Board) Reboot() error {
	b.log.Info("Rebooting device")
	_ = log.Sync()
	return reboot()
}

func readIMEI(env, file string) string {
	if v := strings.TrimSpace(env); v != "" {
		return v
	}
	if b, err := os.ReadFile(file); err == nil {
		return strings.TrimSpace(string(b))
	}
	return ""
}
