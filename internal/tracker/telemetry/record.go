package telemetry

import (
	"encoding/json"
	"math"
	"time"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
)

// Number is a float that encodes NaN and infinities as null. Failed sensor
// reads are NaN.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Record is one telemetry upload. The JSON keys are part of the endpoint
// contract.
type Record struct {
	MMSI          string `json:"mmsi"`
	Callsign      string `json:"cs"`
	Shipname      string `json:"sn"`
	Temperature   Number `json:"tmp"`
	Humidity      Number `json:"hum"`
	HeatIndex     Number `json:"hix"`
	Latitude      Number `json:"lat"`
	Longitude     Number `json:"lon"`
	Heading       Number `json:"hdg"`
	Speed         Number `json:"sog"`
	SignalQuality int    `json:"qos"`
	// Uptime in milliseconds.
	Uptime int64 `json:"upt"`
}

// Inputs are the values a record is built from.
type Inputs struct {
	Config        store.Config
	Readings      core.Readings
	Fix           core.Fix
	SignalQuality int
	Uptime        time.Duration
}

// Assemble builds the record for in.
func Assemble(in Inputs) Record {
	return Record{
		MMSI:          in.Config.MMSI,
		Callsign:      in.Config.Callsign,
		Shipname:      in.Config.Shipname,
		Temperature:   Number(in.Readings.Temperature),
		Humidity:      Number(in.Readings.Humidity),
		HeatIndex:     Number(in.Readings.HeatIndex),
		Latitude:      Number(in.Fix.Latitude),
		Longitude:     Number(in.Fix.Longitude),
		Heading:       Number(in.Fix.Heading),
		Speed:         Number(in.Fix.Speed),
		SignalQuality: in.SignalQuality,
		Uptime:        in.Uptime.Milliseconds(),
	}
}
