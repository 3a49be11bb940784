package memory

import (
	"encoding/binary"
	"fmt"
	"sort"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
)

// Snapshot is a sparse in-memory address space made of independent
// segments. Reads that touch an unmapped byte fail with ErrUnmapped.
// It stands in for a live process in tests and offline tooling.
type Snapshot struct {
	segments []segment
	reads    []Region
}

type segment struct {
	base uint64
	data []byte
}

// NewSnapshot creates an empty address space.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Map places data at base, replacing any overlapping bytes already mapped there
// by extending the segment list. Later mappings win on overlap.
func (s *Snapshot) Map(base uint64, data []byte) {
	buf := make([]byte, len(data))
	copy(buf, data)
	s.segments = append(s.segments, segment{base: base, data: buf})
}

// Alloc maps size zero bytes at base and returns the base for chaining.
func (s *Snapshot) Alloc(base uint64, size int) uint64 {
	s.Map(base, make([]byte, size))
	return base
}

// Unmap removes every segment starting at base.
func (s *Snapshot) Unmap(base uint64) {
	kept := s.segments[:0]
	for _, seg := range s.segments {
		if seg.base != base {
			kept = append(kept, seg)
		}
	}
	s.segments = kept
}

// WriteU16 stores a little-endian uint16 into an already mapped address.
func (s *Snapshot) WriteU16(addr uint64, v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	s.write(addr, buf[:])
}

// WriteU32 stores a little-endian uint32 into an already mapped address.
func (s *Snapshot) WriteU32(addr uint64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	s.write(addr, buf[:])
}

// WriteU64 stores a little-endian uint64 into an already mapped address.
func (s *Snapshot) WriteU64(addr uint64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	s.write(addr, buf[:])
}

// WriteBytes stores raw bytes into an already mapped address.
func (s *Snapshot) WriteBytes(addr uint64, data []byte) {
	s.write(addr, data)
}

func (s *Snapshot) write(addr uint64, data []byte) {
	for i, b := range data {
		seg, off, ok := s.locate(addr + uint64(i))
		if !ok {
			panic(fmt.Sprintf("memory: write to unmapped address 0x%x", addr+uint64(i)))
		}
		seg.data[off] = b
	}
}

// locate finds the most recently mapped segment holding addr.
func (s *Snapshot) locate(addr uint64) (*segment, uint64, bool) {
	for i := len(s.segments) - 1; i >= 0; i-- {
		seg := &s.segments[i]
		if addr >= seg.base && addr-seg.base < uint64(len(seg.data)) {
			return seg, addr - seg.base, true
		}
	}
	return nil, 0, false
}

// ReadMemory implements Reader.
func (s *Snapshot) ReadMemory(addr uint64, buf []byte) error {
	s.reads = append(s.reads, Region{Base: addr, Size: uint64(len(buf))})
	for i := range buf {
		seg, off, ok := s.locate(addr + uint64(i))
		if !ok {
			return fmt.Errorf("read 0x%x: %w", addr+uint64(i), apperrors.ErrUnmapped)
		}
		buf[i] = seg.data[off]
	}
	return nil
}

// Reads returns the span of every read issued so far, in order.
func (s *Snapshot) Reads() []Region {
	out := make([]Region, len(s.reads))
	copy(out, s.reads)
	return out
}

// ResetReads clears the read log.
func (s *Snapshot) ResetReads() {
	s.reads = s.reads[:0]
}

// Regions lists the mapped segments in address order.
func (s *Snapshot) Regions() []Region {
	regions := make([]Region, 0, len(s.segments))
	for _, seg := range s.segments {
		regions = append(regions, Region{Base: seg.base, Size: uint64(len(seg.data))})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Base < regions[j].Base })
	return regions
}
