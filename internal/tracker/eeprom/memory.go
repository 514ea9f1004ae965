// Package eeprom provides byte-addressable persistent storage for the
// settings record: an in-memory medium and a file-backed image.
package eeprom

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned for an address outside the medium.
var ErrOutOfRange = errors.New("eeprom: address out of range")

// Erased is the value of a never-written EEPROM cell.
const Erased = 0xFF

// Memory is a volatile medium, erased on creation.
type Memory struct {
	data []byte
}

// NewMemory returns an erased medium of size bytes.
func NewMemory(size int) *Memory {
	m := &Memory{data: make([]byte, size)}
	for i := range m.data {
		m.data[i] = Erased
	}
	return m
}

func (m *Memory) ByteAt(addr int) (byte, error) {
	if addr < 0 || addr >= len(m.data) {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, addr)
	}
	return m.data[addr], nil
}

func (m *Memory) SetByte(addr int, b byte) error {
	if addr < 0 || addr >= len(m.data) {
		return fmt.Errorf("%w: %d", ErrOutOfRange, addr)
	}
	m.data[addr] = b
	return nil
}

// Size returns the capacity in bytes.
func (m *Memory) Size() int {
	return len(m.data)
}
