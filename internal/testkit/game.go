// Package testkit builds fake game memory images and collaborators for tests.
package testkit

import (
	"encoding/binary"
	"fmt"
	"sync"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/memory"
)

// Fixed addresses of the fake image.
const (
	ModuleBase = 0x140000000
	ModuleSize = 0x10000

	NamePoolSigAt = ModuleBase + 0x1000
	WorldSigAt    = ModuleBase + 0x2000
	NamePoolAt    = ModuleBase + 0x8000
	WorldGlobalAt = ModuleBase + 0x9000

	WorldAt     = 0x200000000
	StateOwner  = 0x200100000
	SaveOwner   = 0x200200000
	SaveArrayAt = 0x200300000
	MapBufferAt = 0x200400000

	ChunkBase   = 0x300000000
	ChunkStride = 0x100000
	ChunkSize   = 0x20000
	Chunks      = 2

	SaveSlots = 256
)

// Game is a memory image laid out the way the real process exposes the
// world, the save flags and the name pool.
type Game struct {
	Mem *memory.Snapshot

	cursors [Chunks]uint64
	keys    map[string]uint32
	count   int32
}

// NewGame builds an image with both signatures present, game state 0, no
// map and no save flags.
func NewGame() *Game {
	g := &Game{
		Mem:  memory.NewSnapshot(),
		keys: make(map[string]uint32),
	}

	g.Mem.Alloc(ModuleBase, ModuleSize)
	g.writeSignature(NamePoolSigAt, []byte{0x74, 0x09, 0x48, 0x8D, 0x15, 0, 0, 0, 0, 0xEB, 0x16},
		layout.NamePoolDisplacement, layout.NamePoolAnchor, NamePoolAt)
	g.writeSignature(WorldSigAt, []byte{0x0F, 0x2E, 0xC0, 0x74, 0x05, 0x48, 0x8B, 0x1D, 0, 0, 0, 0, 0x48, 0x85, 0xDB, 0x74},
		layout.WorldDisplacement, layout.WorldAnchor, WorldGlobalAt)

	g.Mem.Alloc(WorldAt, 0x1000)
	g.Mem.Alloc(StateOwner, 0x1000)
	g.Mem.Alloc(SaveOwner, 0x1000)
	g.Mem.Alloc(SaveArrayAt, 8*SaveSlots)
	g.Mem.Alloc(MapBufferAt, 2*layout.MapPathUnits)

	g.Mem.WriteU64(WorldGlobalAt, WorldAt)
	g.Mem.WriteU64(WorldAt+layout.GameStateOffsets[1], StateOwner)
	g.Mem.WriteU64(WorldAt+layout.SaveFlagCountOffsets[1], SaveOwner)
	g.Mem.WriteU64(SaveOwner+layout.SaveFlagArrayOffsets[2], SaveArrayAt)
	g.Mem.WriteU64(WorldAt+layout.CurrentMapOffsets[1], MapBufferAt)

	for i := 0; i < Chunks; i++ {
		chunk := uint64(ChunkBase + i*ChunkStride)
		g.Mem.Alloc(chunk, ChunkSize)
		g.Mem.WriteU64(NamePoolAt+8*uint64(i+2), chunk)
	}
	g.Intern("None")

	return g
}

// writeSignature places pattern at at with a displacement that makes the
// resolver land on target.
func (g *Game) writeSignature(at uint64, pattern []byte, disp, anchor int, target uint64) {
	rel := int32(int64(target) - int64(at) - int64(anchor))
	binary.LittleEndian.PutUint32(pattern[disp:], uint32(rel))
	g.Mem.WriteBytes(at, pattern)
}

// Module returns the main module range.
func (g *Game) Module() memory.Region {
	return memory.Region{Base: ModuleBase, Size: ModuleSize}
}

// SetGameState writes the game-state byte.
func (g *Game) SetGameState(v uint8) {
	g.Mem.WriteBytes(StateOwner+layout.GameStateOffsets[2], []byte{v})
}

// SetMap writes the current map path as UTF-16LE, NUL padded.
func (g *Game) SetMap(path string) {
	buf := make([]byte, 2*layout.MapPathUnits)
	for i, c := range []rune(path) {
		if i >= layout.MapPathUnits {
			break
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(c))
	}
	g.Mem.WriteBytes(MapBufferAt, buf)
}

// Intern adds name to chunk 0 of the pool and returns its packed key.
// Interning the same name twice returns the same key.
func (g *Game) Intern(name string) uint32 {
	if key, ok := g.keys[name]; ok {
		return key
	}
	key := g.InternRaw(0, uint16(len(name))<<6, []byte(name))
	g.keys[name] = key
	return key
}

// InternRaw writes an entry with an arbitrary header into chunk and
// returns its key. Only data is written after the header.
func (g *Game) InternRaw(chunk int, header uint16, data []byte) uint32 {
	base := uint64(ChunkBase + chunk*ChunkStride)
	off := g.cursors[chunk]
	need := uint64(2 + len(data))
	if off+need > ChunkSize {
		panic(fmt.Sprintf("testkit: chunk %d full", chunk))
	}
	g.Mem.WriteU16(base+off, header)
	g.Mem.WriteBytes(base+off+2, data)
	g.cursors[chunk] = off + need + need%2
	return uint32(chunk)<<16 | uint32(off/2)
}

// AddFlag appends a save flag named name and bumps the count.
func (g *Game) AddFlag(name string) {
	g.AddFlagKey(g.Intern(name), 0)
}

// AddFlagKey appends a save flag with an explicit key and number. The slot
// identity is number<<32 | key.
func (g *Game) AddFlagKey(key uint32, number uint32) {
	if g.count >= SaveSlots {
		panic("testkit: save array full")
	}
	g.Mem.WriteU64(SaveArrayAt+8*uint64(g.count), uint64(number)<<32|uint64(key))
	g.SetFlagCount(g.count + 1)
}

// SetFlagCount writes the save-flag count without touching the slots.
func (g *Game) SetFlagCount(n int32) {
	g.count = n
	g.Mem.WriteU32(SaveOwner+layout.SaveFlagCountOffsets[2], uint32(n))
}

// FlagCount returns the last count written.
func (g *Game) FlagCount() int32 {
	return g.count
}

// DropWorld makes the world pointer chain unreadable.
func (g *Game) DropWorld() {
	g.Mem.WriteU64(WorldGlobalAt, 0)
}

// RestoreWorld undoes DropWorld.
func (g *Game) RestoreWorld() {
	g.Mem.WriteU64(WorldGlobalAt, WorldAt)
}

// Process wraps a Game as an attached process.
type Process struct {
	*Game

	PIDValue   int
	ModuleName string

	mu     sync.Mutex
	done   chan struct{}
	closed bool
}

// NewProcess attaches a fake process to g.
func NewProcess(g *Game) *Process {
	return &Process{
		Game:       g,
		PIDValue:   4242,
		ModuleName: layout.ModuleName,
		done:       make(chan struct{}),
	}
}

// ReadMemory implements memory.Reader.
func (p *Process) ReadMemory(addr uint64, buf []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Mem.ReadMemory(addr, buf)
}

// ModuleRange returns the fake module when name matches.
func (p *Process) ModuleRange(name string) (memory.Region, error) {
	if name != p.ModuleName {
		return memory.Region{}, fmt.Errorf("%s: %w", name, apperrors.ErrModuleNotFound)
	}
	return p.Module(), nil
}

// PID returns the fake process id.
func (p *Process) PID() int {
	return p.PIDValue
}

// Done is closed by Exit.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Exit simulates the process terminating.
func (p *Process) Exit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
}

// Close implements the process handle contract.
func (p *Process) Close() error {
	return nil
}

// Locked runs fn while holding the process lock, for tests that mutate the
// image while a splitter goroutine reads it.
func (p *Process) Locked(fn func(g *Game)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.Game)
}
