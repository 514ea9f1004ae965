package eeprom

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/autopeer-io/seatrack/internal/tracker/core"
	"github.com/autopeer-io/seatrack/pkg/log"
)

var (
	_ core.ByteStore = (*File)(nil)
	_ core.Committer = (*File)(nil)
)

// File emulates an EEPROM with an image file. Writes are buffered in memory
// and reach the disk on Commit, which replaces the image atomically.
type File struct {
	path  string
	mem   *Memory
	dirty bool
}

// OpenFile loads the image at path. A missing image is created erased; an
// image of a different size is padded with erased cells or cut to size.
func OpenFile(path string, size int) (*File, error) {
	if size <= 0 {
		return nil, fmt.Errorf("eeprom: invalid size %d", size)
	}

	f := &File{path: path, mem: NewMemory(size)}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		log.Info("EEPROM image not found, starting erased", "path", path, "size", size)
		f.dirty = true
	case err != nil:
		return nil, fmt.Errorf("eeprom: read image: %w", err)
	default:
		if len(data) != size {
			log.Warn("EEPROM image size mismatch", "path", path, "have", len(data), "want", size)
			f.dirty = true
		}
		copy(f.mem.data, data)
	}

	return f, nil
}

func (f *File) ByteAt(addr int) (byte, error) {
	return f.mem.ByteAt(addr)
}

func (f *File) SetByte(addr int, b byte) error {
	if err := f.mem.SetByte(addr, b); err != nil {
		return err
	}
	f.dirty = true
	return nil
}

// Commit writes the image if anything changed since the last commit.
func (f *File) Commit() error {
	if !f.dirty {
		return nil
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("eeprom: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".eeprom-*")
	if err != nil {
		return fmt.Errorf("eeprom: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(f.mem.data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("eeprom: write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("eeprom: sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("eeprom: close image: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("eeprom: replace image: %w", err)
	}

	f.dirty = false
	return nil
}

// Path returns the image location.
func (f *File) Path() string {
	return f.path
}
