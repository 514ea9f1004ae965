//go:build !linux

package hal

import (
	"errors"
	"time"

	"k8s.io/utils/clock"
)

var errUnsupported = errors.New("not supported on this platform")

func pulseLine(string, time.Duration, clock.Clock) error {
	return errUnsupported
}

func reboot() error {
	return errUnsupported
}
