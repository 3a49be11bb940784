// Package fname decodes save-flag names from the game's interned name pool.
//
// A save flag slot holds a 64-bit identity whose low 32 bits are a packed
// name key: the high 16 bits select a chunk in the name pool, the low 16
// bits are the entry offset inside that chunk in 2-byte units. Each entry
// starts with a 16-bit header whose upper 10 bits are the name length; the
// name bytes follow the header.
package fname

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
	"github.com/provide-io/solarsplit/pkg/pointer"
)

const (
	// SlotSize is the stride of the save-flag array.
	SlotSize = 8
	// ChunkTableOffset is the index of the first chunk pointer in the pool.
	ChunkTableOffset = 2
	// EntryHeaderSize precedes the name bytes of each entry.
	EntryHeaderSize = 2
	// LengthShift drops the packed flag bits from an entry header.
	LengthShift = 6
	// MaxNameLength caps how many name bytes are ever read.
	MaxNameLength = 64
)

// Key is a packed name-pool reference.
type Key uint32

// Chunk returns the chunk index.
func (k Key) Chunk() uint64 {
	return uint64(k >> 16)
}

// Offset returns the entry offset inside the chunk, in 2-byte units.
func (k Key) Offset() uint64 {
	return uint64(k & 0xFFFF)
}

// Stats counts cache behaviour for diagnostics.
type Stats struct {
	Hits  int
	Walks int
}

// Resolver looks up the name of the most recently written save flag.
// Names are cached by flag identity for the lifetime of the resolver,
// which is one game session.
type Resolver struct {
	mem       memory.Reader
	saveFlags pointer.Path
	namePool  uint64
	cache     map[int64]string
	stats     Stats
	logger    hclog.Logger
}

// New creates a resolver. saveFlags must resolve to the address of the
// save-flag array pointer; namePool is the resolved name pool root.
func New(mem memory.Reader, saveFlags pointer.Path, namePool uint64, logger hclog.Logger) *Resolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Resolver{
		mem:       mem,
		saveFlags: saveFlags,
		namePool:  namePool,
		cache:     make(map[int64]string),
		logger:    logger,
	}
}

// Newest returns the name of the save flag in slot count-1. ok is false
// when count is not positive or any read along the way fails. A name whose
// bytes are not valid text comes back as "" with ok true.
func (r *Resolver) Newest(count int32) (string, bool) {
	if count <= 0 {
		return "", false
	}

	array, err := r.saveFlags.U64(r.mem)
	if err != nil {
		r.logger.Trace("save flag array unreadable", "error", err)
		return "", false
	}
	slot := array + SlotSize*uint64(count-1)

	raw, err := memory.ReadU64(r.mem, slot)
	if err != nil {
		r.logger.Trace("save flag slot unreadable", "slot", fmt.Sprintf("0x%x", slot), "error", err)
		return "", false
	}
	id := int64(raw)

	if name, ok := r.cache[id]; ok {
		r.stats.Hits++
		return name, true
	}

	key := Key(uint32(raw))
	name, err := r.walk(key)
	if err != nil {
		r.logger.Trace("name pool walk failed", "id", id, "key", uint32(key), "error", err)
		return "", false
	}
	r.stats.Walks++
	r.cache[id] = name

	r.logger.Trace("🏷️ save flag decoded",
		"id", id,
		"chunk", key.Chunk(),
		"offset", key.Offset(),
		"name", name,
	)
	return name, true
}

// walk follows the chunk table and entry header for key.
func (r *Resolver) walk(key Key) (string, error) {
	chunk, err := memory.ReadU64(r.mem, r.namePool+SlotSize*(key.Chunk()+ChunkTableOffset))
	if err != nil {
		return "", fmt.Errorf("chunk table: %w", err)
	}
	if chunk == 0 {
		return "", fmt.Errorf("chunk %d: %w", key.Chunk(), apperrors.ErrNullPointer)
	}

	entry := chunk + 2*key.Offset()
	header, err := memory.ReadU16(r.mem, entry)
	if err != nil {
		return "", fmt.Errorf("entry header: %w", err)
	}

	length := int(header >> LengthShift)
	if length > MaxNameLength {
		length = MaxNameLength
	}
	if length == 0 {
		return "", nil
	}

	raw, err := memory.ReadBytes(r.mem, entry+EntryHeaderSize, length)
	if err != nil {
		return "", fmt.Errorf("entry name: %w", err)
	}
	return decodeName(raw), nil
}

// decodeName returns raw as text, or "" when it is not valid UTF-8.
func decodeName(raw []byte) string {
	out, _, err := transform.Bytes(encoding.UTF8Validator, raw)
	if err != nil {
		return ""
	}
	return string(out)
}

// Stats returns cache counters.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Len returns the number of cached names.
func (r *Resolver) Len() int {
	return len(r.cache)
}
