package gps

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// queueSize bounds the sentences held between two polls.
const queueSize = 64

// closeWait bounds how long Close waits for the reader goroutine. A reader
// the runtime cannot interrupt stays blocked until the next byte arrives.
var closeWait = 2 * time.Second

// Source implements core.GPS over an NMEA byte stream.
type Source struct {
	r     io.Reader
	lines chan string
	done  chan struct{}
	once  sync.Once

	// Owned by the polling goroutine.
	fix core.Fix

	log log.Logger
}

var _ core.GPS = (*Source)(nil)

// Open opens the serial device at the given baud and starts reading.
func Open(device string, baud int) (*Source, error) {
	f, err := openSerial(device, baud)
	if err != nil {
		return nil, err
	}
	s := NewSource(f)
	s.log.Info("GPS receiver opened", "device", device, "baud", baud)
	return s, nil
}

// NewSource starts reading NMEA sentences from r. If r is an io.Closer it is
// closed by Close.
func NewSource(r io.Reader) *Source {
	s := &Source{
		r:     r,
		lines: make(chan string, queueSize),
		done:  make(chan struct{}),
		log:   log.WithName("gps"),
	}
	go s.read()
	return s
}

func (s *Source) read() {
	defer close(s.done)

	sc := bufio.NewScanner(s.r)
	for sc.Scan() {
		select {
		case s.lines <- sc.Text():
		default:
			// Full: the scheduler is behind, old data is as good as lost.
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		s.log.Error(err, "GPS read stopped")
	}
}

// Poll parses every sentence received since the previous call. It never
// waits for the receiver.
func (s *Source) Poll() {
	for {
		select {
		case line := <-s.lines:
			s.handle(line)
		default:
			return
		}
	}
}

func (s *Source) handle(line string) {
	sent, err := parseSentence(line)
	if err != nil {
		s.log.Debug("Bad NMEA sentence", "err", err)
		return
	}
	if sent.Type != "RMC" {
		return
	}

	fix, ok := parseRMC(sent.Fields)
	if !ok || !acceptable(fix) {
		return
	}
	if !acceptable(s.fix) {
		s.log.Info("GPS fix acquired", "lat", fix.Latitude, "lon", fix.Longitude)
	}
	s.fix = fix
	metrics.FixValid.Set(1)
}

// Fix returns the latest accepted fix, or the zero Fix before the first.
func (s *Source) Fix() core.Fix {
	return s.fix
}

// Close closes the underlying stream, if it can be closed, and waits up to
// closeWait for the reader to exit.
func (s *Source) Close() error {
	var err error
	s.once.Do(func() {
		c, ok := s.r.(io.Closer)
		if !ok {
			return
		}
		err = c.Close()

		t := time.NewTimer(closeWait)
		defer t.Stop()
		select {
		case <-s.done:
		case <-t.C:
			s.log.Warn("GPS reader still blocked after close, abandoning it", "wait", closeWait)
		}
	})
	return err
}
