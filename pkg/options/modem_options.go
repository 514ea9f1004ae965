package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ModemOptions)(nil)

// ModemOptions configures the cellular bearer used for telemetry uploads.
type ModemOptions struct {
	// APN is the access point name used when bringing the bearer up.
	APN string `json:"apn" mapstructure:"apn"`

	// Interface, when set, must be up for the bearer to count as connected
	// (for example "wwan0" or "ppp0").
	Interface string `json:"interface" mapstructure:"interface"`

	// IMEI overrides the identity reported by the HAL.
	IMEI string `json:"imei" mapstructure:"imei"`

	// SignalFile holds the last CSQ value reported by the modem (0-31, 99 unknown).
	SignalFile string `json:"signal-file" mapstructure:"signal-file"`

	// HTTPTimeout bounds a single telemetry POST.
	HTTPTimeout time.Duration `json:"http-timeout" mapstructure:"http-timeout"`

	// ResetPulse is how long the modem reset line is held active.
	ResetPulse time.Duration `json:"reset-pulse" mapstructure:"reset-pulse"`

	// ResetLine is the GPIO line name wired to the modem reset pin. Empty disables it.
	ResetLine string `json:"reset-line" mapstructure:"reset-line"`

	// BootRetryPause is the pause between bearer attempts during boot.
	BootRetryPause time.Duration `json:"boot-retry-pause" mapstructure:"boot-retry-pause"`
}

// NewModemOptions creates a ModemOptions object with default parameters.
func NewModemOptions() *ModemOptions {
	return &ModemOptions{
		APN:            "telenor",
		SignalFile:     "/run/seatrack/csq",
		HTTPTimeout:    20 * time.Second,
		ResetPulse:     200 * time.Millisecond,
		ResetLine:      "GPIO2",
		BootRetryPause: time.Second,
	}
}

// Validate checks the modem parameters.
func (o *ModemOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	if o.APN == "" {
		errors = append(errors, fmt.Errorf("modem.apn must not be empty"))
	}
	if o.HTTPTimeout <= 0 {
		errors = append(errors, fmt.Errorf("modem.http-timeout must be > 0"))
	}
	if o.BootRetryPause <= 0 {
		errors = append(errors, fmt.Errorf("modem.boot-retry-pause must be > 0"))
	}

	return errors
}

// AddFlags adds flags for ModemOptions to the specified FlagSet.
func (o *ModemOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.APN, "modem.apn", o.APN, "Access point name used for the data bearer.")
	fs.StringVar(&o.Interface, "modem.interface", o.Interface, "Network interface that must be up for the bearer to be connected.")
	fs.StringVar(&o.IMEI, "modem.imei", o.IMEI, "Override the modem IMEI.")
	fs.StringVar(&o.SignalFile, "modem.signal-file", o.SignalFile, "File holding the latest CSQ signal quality value.")
	fs.DurationVar(&o.HTTPTimeout, "modem.http-timeout", o.HTTPTimeout, "Timeout of a single telemetry POST.")
	fs.DurationVar(&o.ResetPulse, "modem.reset-pulse", o.ResetPulse, "Duration the modem reset line is held active.")
	fs.StringVar(&o.ResetLine, "modem.reset-line", o.ResetLine, "GPIO line name wired to the modem reset pin.")
	fs.DurationVar(&o.BootRetryPause, "modem.boot-retry-pause", o.BootRetryPause, "Pause between bearer attempts during boot.")
}
