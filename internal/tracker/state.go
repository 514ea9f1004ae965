package tracker

import (
	"time"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/internal/tracker/store"
)

// State is the tracker's application state. It is owned by the scheduler
// goroutine and threaded into the tasks; nothing else may touch it.
type State struct {
	// Config is the settings as of the last reload.
	Config        store.Config
	Readings      core.Readings
	Fix           core.Fix
	SignalQuality int
	// Boot is when the agent was created; uptime is measured from it.
	Boot time.Time

	pendingReset bool
}

// NewState returns the state of a tracker booted at boot.
func NewState(boot time.Time) *State {
	return &State{Boot: boot, SignalQuality: 99}
}

// RequestReset raises the pending full-reset flag. Only the reset itself
// clears it.
func (s *State) RequestReset() {
	s.pendingReset = true
}

// PendingReset reports whether a full reset has been requested.
func (s *State) PendingReset() bool {
	return s.pendingReset
}

// Uptime returns the time elapsed since boot.
func (s *State) Uptime(now time.Time) time.Duration {
	return now.Sub(s.Boot)
}
