package store

import (
	"fmt"

	"github.com/autopeer-io/seatrack/internal/pkg/metrics"
	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

// Store loads and saves the settings record at a fixed address of a
// byte-addressable medium.
type Store struct {
	dev  core.ByteStore
	base int
	log  log.Logger
}

// New returns a Store for the record starting at base.
func New(dev core.ByteStore, base int) *Store {
	return &Store{
		dev:  dev,
		base: base,
		log:  log.WithName("store"),
	}
}

// Load reads and verifies the record. It never fails: an unreadable record
// or a checksum mismatch, which is also what blank storage looks like,
// yields the default settings.
func (s *Store) Load() Config {
	rec, err := s.read()
	if err != nil {
		metrics.ConfigLoadsTotal.WithLabelValues("read_error").Inc()
		s.log.Error(err, "Failed to read saved config, using defaults")
		return Default()
	}

	cfg, ok := Decode(rec)
	if !ok {
		metrics.ConfigLoadsTotal.WithLabelValues("checksum_mismatch").Inc()
		s.log.Warn("Saved config invalid, using defaults",
			"stored", StoredChecksum(rec), "computed", Checksum(rec[:checksumOffset]))
		return Default()
	}

	metrics.ConfigLoadsTotal.WithLabelValues("ok").Inc()
	return cfg
}

// Save writes cfg with a fresh checksum and commits the medium when it
// buffers writes. Bytes that already hold the right value are not
// rewritten. A failure leaves a partially written record; nothing is
// retried or rolled back.
func (s *Store) Save(cfg Config) error {
	rec := Encode(cfg)

	for i, b := range rec {
		addr := s.base + i
		if cur, err := s.dev.ByteAt(addr); err == nil && cur == b {
			continue
		}
		if err := s.dev.SetByte(addr, b); err != nil {
			return fmt.Errorf("write config byte %d: %w", addr, err)
		}
	}

	if c, ok := s.dev.(core.Committer); ok {
		if err := c.Commit(); err != nil {
			return fmt.Errorf("commit config: %w", err)
		}
	}

	s.log.Debug("Config saved", "checksum", StoredChecksum(rec[:]))
	return nil
}

// Inspection describes the stored record as found on the medium.
type Inspection struct {
	Config   Config `json:"config" yaml:"config"`
	Valid    bool   `json:"valid" yaml:"valid"`
	Stored   uint32 `json:"storedChecksum" yaml:"storedChecksum"`
	Computed uint32 `json:"computedChecksum" yaml:"computedChecksum"`
	Raw      []byte `json:"-" yaml:"-"`
}

// Inspect decodes the record without substituting defaults, for
// diagnostics. Unlike Load it reports read failures.
func (s *Store) Inspect() (Inspection, error) {
	rec, err := s.read()
	if err != nil {
		return Inspection{}, err
	}

	cfg, ok := Decode(rec)
	if !ok {
		// Show what the slots hold even though they are not trusted.
		cfg = Config{
			Owner:    getField(rec[ownerOffset:mmsiOffset]),
			MMSI:     getField(rec[mmsiOffset:shipnameOffset]),
			Shipname: getField(rec[shipnameOffset:callsignOffset]),
			Callsign: getField(rec[callsignOffset:checksumOffset]),
		}
	}

	return Inspection{
		Config:   cfg,
		Valid:    ok,
		Stored:   StoredChecksum(rec),
		Computed: Checksum(rec[:checksumOffset]),
		Raw:      rec,
	}, nil
}

func (s *Store) read() ([]byte, error) {
	rec := make([]byte, RecordSize)
	for i := range rec {
		b, err := s.dev.ByteAt(s.base + i)
		if err != nil {
			return nil, fmt.Errorf("read config byte %d: %w", s.base+i, err)
		}
		rec[i] = b
	}
	return rec, nil
}
