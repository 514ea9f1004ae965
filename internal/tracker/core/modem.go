package core

import "context"

// Result is the outcome of an HTTP request made through the modem.
type Result struct {
	StatusCode int
	// Body holds the start of the response body.
	Body string
}

// OK reports a 2xx status.
func (r Result) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Modem is the cellular modem as seen by the tracker: a data bearer, an SMS
// inbox and a pair of reset controls. Implementations must not block on
// external events except for the bounded network calls below.
type Modem interface {
	// Connect brings the data bearer up on the given APN. One attempt only.
	Connect(ctx context.Context, apn string) error

	// IsConnected reports whether the bearer is up.
	IsConnected() bool

	// PostJSON sends body to url. A non-2xx status is returned in Result,
	// not as an error.
	PostJSON(ctx context.Context, url string, body []byte, contentType string) (Result, error)

	// Close tears the bearer down.
	Close() error

	// SignalQuality returns the CSQ value, 0-31 or 99 when unknown.
	SignalQuality() int

	// IMEI returns the modem hardware identifier.
	IMEI() string

	// PollCommand returns the next received command, if any, without waiting.
	PollCommand() (Command, bool)

	// ResetSoft restarts the modem only.
	ResetSoft() error

	// ResetFull restarts the whole device.
	ResetFull() error
}
