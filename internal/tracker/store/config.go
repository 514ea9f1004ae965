package store

// Field capacities of the persisted record, in bytes.
const (
	OwnerSize    = 16
	MMSISize     = 16
	ShipnameSize = 20
	CallsignSize = 10
	ChecksumSize = 4

	// RecordSize is the size of the persisted record including the checksum.
	RecordSize = OwnerSize + MMSISize + ShipnameSize + CallsignSize + ChecksumSize
)

// Byte offsets of each field inside the record.
const (
	ownerOffset    = 0
	mmsiOffset     = ownerOffset + OwnerSize
	shipnameOffset = mmsiOffset + MMSISize
	callsignOffset = shipnameOffset + ShipnameSize
	checksumOffset = callsignOffset + CallsignSize
)

// Config is the tracker's persisted settings. Every field is bounded by the
// capacity of its slot in the record; the setters truncate silently.
type Config struct {
	// Owner is the phone number allowed to send commands.
	Owner string `json:"owner" yaml:"owner"`
	// MMSI is the vessel's Maritime Mobile Service Identity.
	MMSI     string `json:"mmsi" yaml:"mmsi"`
	Shipname string `json:"shipname" yaml:"shipname"`
	Callsign string `json:"callsign" yaml:"callsign"`
}

// Default returns the all-empty settings used when nothing valid is stored.
func Default() Config {
	return Config{}
}

// IsDefault reports whether every field is empty.
func (c Config) IsDefault() bool {
	return c == Config{}
}

func (c *Config) SetOwner(v string)    { c.Owner = truncate(v, OwnerSize) }
func (c *Config) SetMMSI(v string)     { c.MMSI = truncate(v, MMSISize) }
func (c *Config) SetShipname(v string) { c.Shipname = truncate(v, ShipnameSize) }
func (c *Config) SetCallsign(v string) { c.Callsign = truncate(v, CallsignSize) }

// truncate cuts v to at most n bytes. A value longer than its slot is not an
// error; the tail is dropped.
func truncate(v string, n int) string {
	if len(v) <= n {
		return v
	}
	return v[:n]
}
