// Package pointer resolves multi-level pointer chains in a foreign address space.
package pointer

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Path describes base → [+off0 deref] → [+off1 deref] → … → +offN.
// Every offset except the last is followed by a 64-bit pointer read; the
// last offset is added to produce the address of the final value. A Path
// holds no state and is safe to reuse every tick.
type Path struct {
	Base    uint64
	Offsets []uint64
}

// New builds a Path. At least one offset is required.
func New(base uint64, offsets ...uint64) Path {
	if len(offsets) == 0 {
		panic("pointer: path needs at least one offset")
	}
	o := make([]uint64, len(offsets))
	copy(o, offsets)
	return Path{Base: base, Offsets: o}
}

func (p Path) String() string {
	parts := make([]string, 0, len(p.Offsets)+1)
	parts = append(parts, fmt.Sprintf("0x%x", p.Base))
	for _, off := range p.Offsets {
		parts = append(parts, fmt.Sprintf("0x%x", off))
	}
	return strings.Join(parts, " → ")
}

// Address walks the chain and returns the address of the final value.
// The chain fails as a unit: a failed read or a null pointer at any hop
// yields ErrBrokenChain and no address.
func (p Path) Address(r memory.Reader) (uint64, error) {
	addr := p.Base
	last := len(p.Offsets) - 1
	for hop, off := range p.Offsets[:last] {
		next, err := memory.ReadU64(r, addr+off)
		if err != nil {
			return 0, fmt.Errorf("%w: hop %d: %w", apperrors.ErrBrokenChain, hop, err)
		}
		if next == 0 {
			return 0, fmt.Errorf("%w: hop %d: %w", apperrors.ErrBrokenChain, hop, apperrors.ErrNullPointer)
		}
		addr = next
	}
	return addr + p.Offsets[last], nil
}

// U8 resolves the chain and reads a byte.
func (p Path) U8(r memory.Reader) (uint8, error) {
	addr, err := p.Address(r)
	if err != nil {
		return 0, err
	}
	return memory.ReadU8(r, addr)
}

// I32 resolves the chain and reads a little-endian int32.
func (p Path) I32(r memory.Reader) (int32, error) {
	addr, err := p.Address(r)
	if err != nil {
		return 0, err
	}
	return memory.ReadI32(r, addr)
}

// U64 resolves the chain and reads a little-endian uint64.
func (p Path) U64(r memory.Reader) (uint64, error) {
	addr, err := p.Address(r)
	if err != nil {
		return 0, err
	}
	return memory.ReadU64(r, addr)
}

// Bytes resolves the chain and reads n raw bytes.
func (p Path) Bytes(r memory.Reader, n int) ([]byte, error) {
	addr, err := p.Address(r)
	if err != nil {
		return nil, err
	}
	return memory.ReadBytes(r, addr, n)
}

// WideString resolves the chain and reads a fixed buffer of n UTF-16LE
// code units, returning the text up to the first NUL.
func (p Path) WideString(r memory.Reader, n int) (string, error) {
	raw, err := p.Bytes(r, 2*n)
	if err != nil {
		return "", err
	}
	return DecodeWide(raw)
}

// DecodeWide decodes a NUL-terminated UTF-16LE buffer.
func DecodeWide(raw []byte) (string, error) {
	for i := 0; i+1 < len(raw); i += 2 {
		if raw[i] == 0 && raw[i+1] == 0 {
			raw = raw[:i]
			break
		}
	}
	out, err := utf16le.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimRight(out, "\x00")), nil
}
