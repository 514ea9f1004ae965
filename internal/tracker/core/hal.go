package core

// HAL is the board the tracker runs on.
type HAL interface {
	// IMEI returns an identity override, or "" to use the modem's own.
	IMEI() string

	// PulseModemReset drives the modem reset line.
	PulseModemReset() error

	// Reboot restarts the device. It returns only on failure.
	Reboot() error
}
