// Package sensor reads air temperature and humidity from a DHT11/DHT22
// exposed through the Linux industrial I/O subsystem.
package sensor

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// sysfs attributes of the dht11 IIO driver, in milli-units.
const (
	tempAttr     = "in_temp_input"
	humidityAttr = "in_humidityrelative_input"
)

// IIO implements core.EnvSensor on an IIO device directory such as
// /sys/bus/iio/devices/iio:device0. A failed read yields NaN.
type IIO struct {
	dir string
	log log.Logger
}

var _ core.EnvSensor = (*IIO)(nil)

// NewIIO returns a sensor reading from dir.
func NewIIO(dir string) *IIO {
	return &IIO{dir: dir, log: log.WithName("sensor")}
}

// ReadTemperature returns degrees Celsius.
func (s *IIO) ReadTemperature() float64 {
	return s.read(tempAttr)
}

// ReadHumidity returns percent relative humidity.
func (s *IIO) ReadHumidity() float64 {
	return s.read(humidityAttr)
}

// ComputeHeatIndex returns the heat index in degrees Celsius.
func (s *IIO) ComputeHeatIndex(temperature, humidity float64) float64 {
	return HeatIndex(temperature, humidity)
}

func (s *IIO) read(attr string) float64 {
	// The driver answers EIO when the sensor misses its timing window.
	b, err := os.ReadFile(filepath.Join(s.dir, attr))
	if err != nil {
		s.log.Debug("Sensor read failed", "attr", attr, "err", err)
		return math.NaN()
	}
	milli, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		s.log.Debug("Sensor value unparsable", "attr", attr, "value", string(b))
		return math.NaN()
	}
	return float64(milli) / 1000
}
