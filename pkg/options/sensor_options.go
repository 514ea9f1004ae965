package options

import (
	"github.com/spf13/pflag"
)

var _ IOptions = (*SensorOptions)(nil)

// SensorOptions configures the temperature and humidity sensor.
type SensorOptions struct {
	// IIODevice is the sysfs directory of the dht11 IIO device.
	IIODevice string `json:"iio-device" mapstructure:"iio-device"`
}

// NewSensorOptions creates a SensorOptions object with default parameters.
func NewSensorOptions() *SensorOptions {
	return &SensorOptions{
		IIODevice: "/sys/bus/iio/devices/iio:device0",
	}
}

// Validate is a no-op; a missing device yields NaN readings at runtime.
func (o *SensorOptions) Validate() []error {
	return nil
}

// AddFlags adds flags for SensorOptions to the specified FlagSet.
func (o *SensorOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.IIODevice, "sensor.iio-device", o.IIODevice, "Sysfs directory of the DHT IIO device.")
}
