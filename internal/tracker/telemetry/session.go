package telemetry

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	fsmutil "github.com/autopeer-io/seatrack/internal/pkg/util/fsm"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
)

// Bearer session states.
const (
	StateIdle      = "idle"
	StateConnected = "connected"
	StatePosted    = "posted"
	StateFailed    = "failed"
	StateClosed    = "closed"
)

const (
	eventConnect = "connect"
	eventPost    = "post"
	eventFail    = "fail"
	eventClose   = "close"
)

// session walks one upload cycle through connect, post and close. The modem
// calls run in the before_ callbacks so a failure cancels the transition.
type session struct {
	*fsm.FSM

	modem core.Modem

	apn         string
	url         string
	contentType string
	body        []byte

	result core.Result
	err    error
}

func newSession(m core.Modem, apn, url, contentType string, body []byte) *session {
	s := &session{
		modem:       m,
		apn:         apn,
		url:         url,
		contentType: contentType,
		body:        body,
	}

	events := fsm.Events{
		{Name: eventConnect, Src: []string{StateIdle}, Dst: StateConnected},
		{Name: eventPost, Src: []string{StateConnected}, Dst: StatePosted},
		{Name: eventFail, Src: []string{StateIdle, StateConnected}, Dst: StateFailed},
		{Name: eventClose, Src: []string{StateIdle, StateConnected, StatePosted, StateFailed}, Dst: StateClosed},
	}

	callbacks := fsm.Callbacks{
		"before_" + eventConnect: s.guardConnect,
		"before_" + eventPost:    s.guardPost,
		"enter_" + StateClosed:   fsmutil.WrapEvent(s.actionClose),
	}

	s.FSM = fsm.NewFSM(StateIdle, events, callbacks)
	return s
}

func (s *session) guardConnect(ctx context.Context, e *fsm.Event) {
	if err := s.modem.Connect(ctx, s.apn); err != nil {
		s.err = fmt.Errorf("%w: %w", ErrConnect, err)
		e.Cancel(s.err)
	}
}

func (s *session) guardPost(ctx context.Context, e *fsm.Event) {
	res, err := s.modem.PostJSON(ctx, s.url, s.body, s.contentType)
	s.result = res
	switch {
	case err != nil:
		s.err = fmt.Errorf("%w: %w", ErrPost, err)
	case !res.OK():
		s.err = fmt.Errorf("%w: status %d", ErrPost, res.StatusCode)
	default:
		return
	}
	e.Cancel(s.err)
}

// actionClose is best effort; its error is logged, never acted upon.
func (s *session) actionClose(_ context.Context, _ *fsm.Event) error {
	return s.modem.Close()
}

// step fires event and returns the modem error behind a cancelled transition.
func (s *session) step(ctx context.Context, event string) error {
	s.err = nil
	if err := s.Event(ctx, event); err != nil {
		if s.err != nil {
			return s.err
		}
		return err
	}
	return nil
}
