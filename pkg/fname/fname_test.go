package fname

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/internal/testkit"
	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/pointer"
)

func newResolver(g *testkit.Game) *Resolver {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "fname_test",
		Level: hclog.Trace,
	})
	saveFlags := pointer.New(testkit.WorldGlobalAt, layout.SaveFlagArrayOffsets...)
	return New(g.Mem, saveFlags, testkit.NamePoolAt, logger)
}

func TestKeyUnpacking(t *testing.T) {
	k := Key(0x0003_01F4)
	if k.Chunk() != 3 || k.Offset() != 0x1F4 {
		t.Errorf("Chunk/Offset = %d/%d", k.Chunk(), k.Offset())
	}
	k = Key(0xFFFF_FFFF)
	if k.Chunk() != 0xFFFF || k.Offset() != 0xFFFF {
		t.Errorf("unsigned unpack failed: %d/%d", k.Chunk(), k.Offset())
	}
}

func TestNewestDecodesLatestSlot(t *testing.T) {
	g := testkit.NewGame()
	g.AddFlag("Intro_Seen")
	g.AddFlag("Vale_Starseed_Remnant")
	r := newResolver(g)

	tests := []struct {
		count int32
		want  string
	}{
		{count: 1, want: "Intro_Seen"},
		{count: 2, want: "Vale_Starseed_Remnant"},
	}
	for _, tt := range tests {
		got, ok := r.Newest(tt.count)
		if !ok || got != tt.want {
			t.Errorf("Newest(%d) = %q, %v; want %q", tt.count, got, ok, tt.want)
		}
	}
}

func TestNewestNonPositiveCount(t *testing.T) {
	g := testkit.NewGame()
	g.AddFlag("Intro_Seen")
	r := newResolver(g)

	for _, count := range []int32{0, -1, -100} {
		g.Mem.ResetReads()
		if _, ok := r.Newest(count); ok {
			t.Errorf("Newest(%d) reported a flag", count)
		}
		if n := len(g.Mem.Reads()); n != 0 {
			t.Errorf("Newest(%d) issued %d reads", count, n)
		}
	}
}

func TestNewestCachesByIdentity(t *testing.T) {
	g := testkit.NewGame()
	g.AddFlag("Woods_OldCity_Remnant")
	r := newResolver(g)

	first, ok := r.Newest(1)
	if !ok {
		t.Fatal("first lookup failed")
	}
	if s := r.Stats(); s.Walks != 1 || s.Hits != 0 {
		t.Fatalf("after first lookup stats = %+v", s)
	}

	g.Mem.ResetReads()
	second, ok := r.Newest(1)
	if !ok || second != first {
		t.Fatalf("second lookup = %q, %v; want %q", second, ok, first)
	}
	if s := r.Stats(); s.Walks != 1 || s.Hits != 1 {
		t.Errorf("after second lookup stats = %+v", s)
	}
	for _, read := range g.Mem.Reads() {
		if read.Base >= testkit.ChunkBase || (read.Base >= testkit.NamePoolAt && read.Base < testkit.NamePoolAt+0x100) {
			t.Errorf("cache hit touched the name pool at 0x%x", read.Base)
		}
	}
	if r.Len() != 1 {
		t.Errorf("cache size = %d", r.Len())
	}
}

func TestNewestDistinguishesNumberedFlags(t *testing.T) {
	g := testkit.NewGame()
	key := g.Intern("Shroom_Overflow_Remnant")
	g.AddFlagKey(key, 0)
	g.AddFlagKey(key, 1)
	r := newResolver(g)

	for _, count := range []int32{1, 2} {
		if name, ok := r.Newest(count); !ok || name != "Shroom_Overflow_Remnant" {
			t.Errorf("Newest(%d) = %q, %v", count, name, ok)
		}
	}
	if s := r.Stats(); s.Walks != 2 {
		t.Errorf("walks = %d, want one per identity", s.Walks)
	}
}

func TestNewestSecondChunk(t *testing.T) {
	g := testkit.NewGame()
	name := "Beach_Frigate_StaticRemnantA"
	key := g.InternRaw(1, uint16(len(name))<<6, []byte(name))
	g.AddFlagKey(key, 0)

	got, ok := newResolver(g).Newest(1)
	if !ok || got != name {
		t.Errorf("Newest = %q, %v", got, ok)
	}
}

func TestNewestLowHeaderBitsIgnored(t *testing.T) {
	g := testkit.NewGame()
	name := "Vale_StaticRemnantD"
	key := g.InternRaw(0, uint16(len(name))<<6|0x3F, []byte(name))
	g.AddFlagKey(key, 0)

	if got, ok := newResolver(g).Newest(1); !ok || got != name {
		t.Errorf("Newest = %q, %v", got, ok)
	}
}

func TestNewestClampsLength(t *testing.T) {
	g := testkit.NewGame()
	long := strings.Repeat("A", 200)
	key := g.InternRaw(0, uint16(len(long))<<6, []byte(long))
	g.AddFlagKey(key, 0)
	r := newResolver(g)

	g.Mem.ResetReads()
	got, ok := r.Newest(1)
	if !ok {
		t.Fatal("lookup failed")
	}
	if len(got) != MaxNameLength {
		t.Errorf("len = %d, want %d", len(got), MaxNameLength)
	}

	entry := uint64(testkit.ChunkBase) + 2*Key(key).Offset()
	limit := entry + EntryHeaderSize + MaxNameLength
	for _, read := range g.Mem.Reads() {
		if read.Base >= entry && read.End() > limit {
			t.Errorf("read 0x%x+%d goes past the clamp at 0x%x", read.Base, read.Size, limit)
		}
	}
}

func TestNewestInvalidTextIsEmpty(t *testing.T) {
	g := testkit.NewGame()
	bad := []byte{'O', 'k', 0xFF, 0xFE}
	key := g.InternRaw(0, uint16(len(bad))<<6, bad)
	g.AddFlagKey(key, 0)

	got, ok := newResolver(g).Newest(1)
	if !ok {
		t.Fatal("decode failure must not fail the lookup")
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestNewestBrokenReads(t *testing.T) {
	tests := []struct {
		name    string
		breakFn func(g *testkit.Game)
	}{
		{
			name:    "world pointer null",
			breakFn: func(g *testkit.Game) { g.DropWorld() },
		},
		{
			name:    "save array unmapped",
			breakFn: func(g *testkit.Game) { g.Mem.Unmap(testkit.SaveArrayAt) },
		},
		{
			name:    "chunk pointer null",
			breakFn: func(g *testkit.Game) { g.Mem.WriteU64(testkit.NamePoolAt+16, 0) },
		},
		{
			name:    "chunk unmapped",
			breakFn: func(g *testkit.Game) { g.Mem.Unmap(testkit.ChunkBase) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testkit.NewGame()
			g.AddFlag("Woods_IronRootBasin_Remnant")
			tt.breakFn(g)
			r := newResolver(g)
			if name, ok := r.Newest(1); ok {
				t.Errorf("Newest = %q, want no flag", name)
			}
			if r.Len() != 0 {
				t.Error("failure was cached")
			}
		})
	}
}

func TestNewestBeyondArrayFails(t *testing.T) {
	g := testkit.NewGame()
	g.AddFlag("Intro_Seen")
	r := newResolver(g)
	if _, ok := r.Newest(testkit.SaveSlots + 1); ok {
		t.Error("read past the save array succeeded")
	}
}
