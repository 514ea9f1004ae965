package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*GpsOptions)(nil)

// GpsOptions configures the NMEA receiver.
type GpsOptions struct {
	Enable bool   `json:"enable" mapstructure:"enable"`
	Device string `json:"device" mapstructure:"device"`
	Baud   int    `json:"baud" mapstructure:"baud"`
}

// NewGpsOptions creates a GpsOptions object with default parameters.
func NewGpsOptions() *GpsOptions {
	return &GpsOptions{
		Enable: true,
		Device: "/dev/ttyS0",
		Baud:   9600,
	}
}

// Validate checks the receiver parameters.
func (o *GpsOptions) Validate() []error {
	if o == nil || !o.Enable {
		return nil
	}

	errors := []error{}

	if o.Device == "" {
		errors = append(errors, fmt.Errorf("gps.device is required when gps.enable is true"))
	}
	switch o.Baud {
	case 4800, 9600, 19200, 38400, 57600, 115200:
	default:
		errors = append(errors, fmt.Errorf("gps.baud %d is not supported", o.Baud))
	}

	return errors
}

// AddFlags adds flags for GpsOptions to the specified FlagSet.
func (o *GpsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enable, "gps.enable", o.Enable, "Read position from the NMEA receiver.")
	fs.StringVar(&o.Device, "gps.device", o.Device, "Serial device of the NMEA receiver.")
	fs.IntVar(&o.Baud, "gps.baud", o.Baud, "Baud rate of the NMEA receiver.")
}
