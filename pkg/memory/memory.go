// Package memory models foreign process memory as a byte reader so the
// introspection code can run against a live process or an in-memory image.
package memory

import (
	"encoding/binary"
	"fmt"
)

// Reader reads raw bytes from an address space. A read either fills buf
// completely or fails; partial reads are reported as errors.
type Reader interface {
	ReadMemory(addr uint64, buf []byte) error
}

// Region is a contiguous address range, typically a loaded module.
type Region struct {
	Base uint64
	Size uint64
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Base + r.Size
}

// Contains reports whether addr lies within the region.
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

func (r Region) String() string {
	return fmt.Sprintf("0x%x+0x%x", r.Base, r.Size)
}

// ReadU8 reads a single byte.
func ReadU8(r Reader, addr uint64) (uint8, error) {
	var buf [1]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a little-endian uint16.
func ReadU16(r Reader, addr uint64) (uint16, error) {
	var buf [2]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

// ReadI32 reads a little-endian int32.
func ReadI32(r Reader, addr uint64) (int32, error) {
	var buf [4]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(buf[:])), nil
}

// ReadU32 reads a little-endian uint32.
func ReadU32(r Reader, addr uint64) (uint32, error) {
	var buf [4]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// ReadU64 reads a little-endian uint64. Pointers in the target are 64-bit.
func ReadU64(r Reader, addr uint64) (uint64, error) {
	var buf [8]byte
	if err := r.ReadMemory(addr, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadBytes reads n bytes into a fresh slice.
func ReadBytes(r Reader, addr uint64, n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := r.ReadMemory(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
