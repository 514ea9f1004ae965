package fsm

import (
	"context"

	"github.com/looplab/fsm"
)

// WrapEvent adapts a callback returning an error to an fsm.Callback. A
// non-nil error is stored on the event and surfaces from FSM.Event.
func WrapEvent(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Err = err
		}
	}
}
