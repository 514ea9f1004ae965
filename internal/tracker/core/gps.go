package core

// Validity flags of a Fix.
type Validity uint8

const (
	ValidLocation Validity = 1 << iota
	ValidHeading
	ValidSpeed
	ValidTime
)

// Has reports whether every flag in v is set.
func (f Validity) Has(v Validity) bool {
	return f&v == v
}

// Fix is a single position/velocity reading.
type Fix struct {
	Latitude  float64 // degrees, north positive
	Longitude float64 // degrees, east positive
	Heading   float64 // degrees true
	Speed     float64 // knots
	Valid     Validity
}

// GPS is a position source polled by the scheduler.
type GPS interface {
	// Poll consumes whatever the receiver produced since the last call and
	// updates the current fix. It must not block.
	Poll()

	// Fix returns the latest accepted fix.
	Fix() Fix
}
