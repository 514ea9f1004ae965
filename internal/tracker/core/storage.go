package core

// ByteStore is byte-addressable persistent storage such as an EEPROM.
type ByteStore interface {
	ByteAt(addr int) (byte, error)
	SetByte(addr int, b byte) error
}

// Committer is implemented by media that buffer writes until committed.
type Committer interface {
	Commit() error
}
