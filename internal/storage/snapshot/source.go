package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
)

// emptyRDBHex is an RDB version 11 file with no keys.
const emptyRDBHex = "524544495330303131fa0972656469732d76657205372e322e30fa0a72656469732d62697473c040fa056374696d65c26d08bc65fa08757365642d6d656dc2b0c41000fa08616f662d62617365c000fff06e3bfef0ff5aa2"

// Magic bytes that open every RDB file.
var magicBytes = []byte("REDIS")

const (
	headerSize = 9 // magic + 4 version digits
	eofOpcode  = 0xFF
)

var (
	ErrInvalidMagic   = errors.New("snapshot: invalid magic bytes")
	ErrInvalidVersion = errors.New("snapshot: invalid version")
	ErrTruncated      = errors.New("snapshot: missing EOF marker")
)

// Static serves a fixed RDB payload.
type Static struct {
	data []byte
}

// NewStatic validates data and returns a source serving it.
func NewStatic(data []byte) (*Static, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Static{data: buf}, nil
}

// Empty returns a source serving the empty RDB file.
func Empty() *Static {
	data, err := hex.DecodeString(emptyRDBHex)
	if err != nil {
		panic(fmt.Sprintf("snapshot: bad empty RDB constant: %v", err))
	}
	return &Static{data: data}
}

// FromFile reads and validates an RDB file.
func FromFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	s, err := NewStatic(data)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", path, err)
	}
	return s, nil
}

// Snapshot returns a copy of the payload.
func (s *Static) Snapshot() ([]byte, error) {
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Size returns the payload length in bytes.
func (s *Static) Size() int {
	return len(s.data)
}

// Validate checks the RDB header and the presence of an EOF opcode before
// the 8-byte checksum.
func Validate(data []byte) error {
	if len(data) < len(magicBytes) || string(data[:len(magicBytes)]) != string(magicBytes) {
		return ErrInvalidMagic
	}
	if len(data) < headerSize {
		return ErrInvalidVersion
	}
	for _, c := range data[len(magicBytes):headerSize] {
		if c < '0' || c > '9' {
			return ErrInvalidVersion
		}
	}
	if len(data) < headerSize+9 || data[len(data)-9] != eofOpcode {
		return ErrTruncated
	}
	return nil
}
