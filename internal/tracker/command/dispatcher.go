// Package command authorizes and executes SMS commands against the stored
// settings.
package command

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// Outcomes recorded per handled command.
const (
	OutcomeAccepted       = "accepted"
	OutcomeRejectedSender = "rejected_sender"
	OutcomeRejectedIMEI   = "rejected_imei"
	OutcomeUnknown        = "unknown"
)

// ModemResetter restarts the modem without touching the rest of the device.
type ModemResetter interface {
	ResetSoft() error
}

// ResetRequester raises the pending full-reset flag.
type ResetRequester interface {
	RequestReset()
}

// Dispatcher handles one command at a time. Nothing is ever sent back to the
// sender, whatever the outcome.
type Dispatcher struct {
	store *store.Store
	imei  func() string
	modem ModemResetter
	reset ResetRequester
	clock clock.Clock
	pause time.Duration
	log   log.Logger
}

// NewDispatcher returns a Dispatcher. pause is taken before a reset is
// carried out.
func NewDispatcher(st *store.Store, imei func() string, m ModemResetter, r ResetRequester,
	clk clock.Clock, pause time.Duration) *Dispatcher {
	return &Dispatcher{
		store: st,
		imei:  imei,
		modem: m,
		reset: r,
		clock: clk,
		pause: pause,
		log:   log.WithName("command"),
	}
}

// Handle authorizes and executes cmd and returns the outcome. Authorization
// failures are not errors; the returned error only reports a failed save.
func (d *Dispatcher) Handle(ctx context.Context, cmd core.Command) (string, error) {
	l := d.log.WithValues("sender", cmd.Sender, "command", cmd.Name)

	// Authorization always works on what is persisted right now.
	cfg := d.store.Load()
	l.Debug("Config reloaded", "owner", cfg.Owner, "mmsi", cfg.MMSI,
		"callsign", cfg.Callsign, "shipname", cfg.Shipname)

	dirty, adopted := false, false
	if cfg.Owner == "" {
		cfg.SetOwner(cmd.Sender)
		dirty, adopted = true, true
		l.Info("No owner configured, adopting sender")
	}

	if cmd.Name == core.CommandResetAll {
		return d.resetAll(ctx, l, cmd)
	}

	if !adopted && cmd.Sender != cfg.Owner {
		l.Warn("Command from unknown sender ignored")
		d.record(cmd.Name, OutcomeRejectedSender)
		return OutcomeRejectedSender, nil
	}

	outcome := OutcomeAccepted
	switch cmd.Name {
	case core.CommandResetGSM:
		l.Info("Resetting modem")
		d.sleep(ctx)
		if err := d.modem.ResetSoft(); err != nil {
			l.Error(err, "Modem reset failed")
		}
	case core.CommandReset:
		l.Info("Full reset requested")
		d.sleep(ctx)
		d.reset.RequestReset()
	case core.CommandMMSI:
		cfg.SetMMSI(cmd.Value)
		dirty = true
	case core.CommandCallsign:
		cfg.SetCallsign(cmd.Value)
		dirty = true
	case core.CommandShipname:
		cfg.SetShipname(cmd.Value)
		dirty = true
	default:
		l.Info("Unknown command ignored", "value", cmd.Value)
		outcome = OutcomeUnknown
	}
	d.record(cmd.Name, outcome)

	if dirty {
		if err := d.store.Save(cfg); err != nil {
			return outcome, fmt.Errorf("save config: %w", err)
		}
		l.Info("Config updated", "owner", cfg.Owner, "mmsi", cfg.MMSI,
			"callsign", cfg.Callsign, "shipname", cfg.Shipname)
	}
	return outcome, nil
}

// resetAll wipes the settings, hands ownership to the sender and schedules a
// full reset. The value must be this device's IMEI; on mismatch nothing
// changes, including an owner adoption made earlier in the same call.
func (d *Dispatcher) resetAll(ctx context.Context, l log.Logger, cmd core.Command) (string, error) {
	imei := d.imei()
	if imei == "" || cmd.Value != imei {
		l.Warn("resetall ignored, IMEI does not match")
		d.record(cmd.Name, OutcomeRejectedIMEI)
		return OutcomeRejectedIMEI, nil
	}

	cfg := store.Default()
	cfg.SetOwner(cmd.Sender)
	saveErr := d.store.Save(cfg)
	if saveErr != nil {
		saveErr = fmt.Errorf("save config after resetall: %w", saveErr)
	} else {
		l.Info("Config reset to defaults, full reset pending")
	}

	// The reset goes ahead even when the save failed.
	d.sleep(ctx)
	d.reset.RequestReset()
	d.record(cmd.Name, OutcomeAccepted)
	return OutcomeAccepted, saveErr
}

func (d *Dispatcher) sleep(ctx context.Context) {
	if ctx.Err() != nil || d.pause <= 0 {
		return
	}
	d.clock.Sleep(d.pause)
}

// record keeps the command label bounded: unrecognized names are counted
// as "other".
func (d *Dispatcher) record(name, outcome string) {
	switch name {
	case core.CommandResetAll, core.CommandResetGSM, core.CommandReset,
		core.CommandMMSI, core.CommandCallsign, core.CommandShipname:
	default:
		name = "other"
	}
	metrics.CommandsTotal.WithLabelValues(name, outcome).Inc()
}
