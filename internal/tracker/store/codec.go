package store

import (
	"bytes"
	"encoding/binary"
)

// Checksum is the 32-bit additive sum of b, wrapping on overflow.
func Checksum(b []byte) uint32 {
	var sum uint32
	for _, c := range b {
		sum += uint32(c)
	}
	return sum
}

// Encode lays c out field by field into a record, NUL padding each slot,
// and appends the little-endian checksum of the preceding bytes.
func Encode(c Config) [RecordSize]byte {
	var rec [RecordSize]byte

	putField(rec[ownerOffset:mmsiOffset], c.Owner)
	putField(rec[mmsiOffset:shipnameOffset], c.MMSI)
	putField(rec[shipnameOffset:callsignOffset], c.Shipname)
	putField(rec[callsignOffset:checksumOffset], c.Callsign)

	binary.LittleEndian.PutUint32(rec[checksumOffset:], Checksum(rec[:checksumOffset]))
	return rec
}

// Decode parses a record. ok is false when rec has the wrong size or its
// stored checksum does not match the data; c is then the default.
func Decode(rec []byte) (c Config, ok bool) {
	if len(rec) != RecordSize {
		return Default(), false
	}
	if StoredChecksum(rec) != Checksum(rec[:checksumOffset]) {
		return Default(), false
	}

	return Config{
		Owner:    getField(rec[ownerOffset:mmsiOffset]),
		MMSI:     getField(rec[mmsiOffset:shipnameOffset]),
		Shipname: getField(rec[shipnameOffset:callsignOffset]),
		Callsign: getField(rec[callsignOffset:checksumOffset]),
	}, true
}

// StoredChecksum returns the checksum field of a full-size record.
func StoredChecksum(rec []byte) uint32 {
	return binary.LittleEndian.Uint32(rec[checksumOffset:RecordSize])
}

func putField(dst []byte, v string) {
	n := copy(dst, v)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// getField reads a NUL terminated string. A slot filled to capacity has no
// terminator.
func getField(src []byte) string {
	if i := bytes.IndexByte(src, 0); i >= 0 {
		return string(src[:i])
	}
	return string(src)
}
