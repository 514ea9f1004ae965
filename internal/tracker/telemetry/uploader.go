package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"k8s.io/utils/clock"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

var (
	// ErrConnect means the bearer could not be brought up.
	ErrConnect = errors.New("bearer connect failed")
	// ErrPost means the POST failed or was answered with a non-2xx status.
	ErrPost = errors.New("telemetry post failed")
)

// maxLoggedBody bounds how much of the endpoint's answer is logged.
const maxLoggedBody = 32

// Options are the fixed parameters of every upload.
type Options struct {
	APN         string
	URL         string
	ContentType string
	// SettlePause is taken after connect, after the POST and after close.
	SettlePause time.Duration
}

// Uploader sends telemetry records through the modem: one connect attempt,
// one POST, and a close that is always attempted.
type Uploader struct {
	modem core.Modem
	clock clock.Clock
	opts  Options
	log   log.Logger
}

// NewUploader returns an Uploader.
func NewUploader(m core.Modem, clk clock.Clock, opts Options) *Uploader {
	return &Uploader{
		modem: m,
		clock: clk,
		opts:  opts,
		log:   log.WithName("upload"),
	}
}

// AssembleAndSend builds the record from in and runs one upload cycle. A
// failure abandons the cycle; it is logged and returned but never retried
// here. The record is dropped when the call returns.
func (u *Uploader) AssembleAndSend(ctx context.Context, in Inputs) error {
	start := u.clock.Now()
	defer func() {
		metrics.UploadDuration.Observe(u.clock.Since(start).Seconds())
	}()

	body, err := json.Marshal(Assemble(in))
	if err != nil {
		return fmt.Errorf("encode telemetry: %w", err)
	}

	id := uuid.NewString()
	ctx = core.WithRequestID(ctx, id)
	l := u.log.WithValues("cycle", id)

	s := newSession(u.modem, u.opts.APN, u.opts.URL, u.opts.ContentType, body)

	sendErr := s.step(ctx, eventConnect)
	if sendErr == nil {
		u.clock.Sleep(u.opts.SettlePause)
		sendErr = s.step(ctx, eventPost)
	}
	if sendErr != nil {
		if s.Can(eventFail) {
			_ = s.Event(ctx, eventFail)
		}
		l.Error(sendErr, "Upload cycle abandoned", "state", s.Current())
	}

	u.clock.Sleep(u.opts.SettlePause)
	if err := s.step(ctx, eventClose); err != nil {
		l.Debug("Bearer close failed", "err", err)
	}
	u.clock.Sleep(u.opts.SettlePause)

	switch {
	case errors.Is(sendErr, ErrConnect):
		metrics.UploadsTotal.WithLabelValues("connect_failed").Inc()
	case sendErr != nil:
		metrics.UploadsTotal.WithLabelValues("post_failed").Inc()
	default:
		metrics.UploadsTotal.WithLabelValues("ok").Inc()
		l.Info("Telemetry uploaded", "status", s.result.StatusCode, "bytes", len(body))
	}
	l.Debug("Endpoint answer", "status", s.result.StatusCode, "body", truncateBody(s.result.Body))

	return sendErr
}

func truncateBody(b string) string {
	if len(b) > maxLoggedBody {
		return b[:maxLoggedBody]
	}
	return b
}
