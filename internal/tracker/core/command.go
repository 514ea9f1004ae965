package core

// Command is a remote instruction received by SMS. It only lives for the
// duration of one dispatch.
type Command struct {
	// Sender is the originating phone number as reported by the network.
	Sender string
	// Name is the lower-cased first word of the message.
	Name string
	// Value is the remainder of the message, possibly empty.
	Value string
}

// Recognized command names.
const (
	CommandResetAll = "resetall"
	CommandResetGSM = "resetgsm"
	CommandReset    = "reset"
	CommandMMSI     = "mmsi"
	CommandCallsign = "callsign"
	CommandShipname = "shipname"
)
