package watcher

import (
	"errors"
	"testing"
)

type reading struct {
	value int
	ok    bool
}

func TestWatcherSequences(t *testing.T) {
	tests := []struct {
		name     string
		readings []reading
		wantOK   bool
		want     Pair[int]
	}{
		{
			name:   "never updated",
			wantOK: false,
		},
		{
			name:     "only failures",
			readings: []reading{{0, false}, {0, false}},
			wantOK:   false,
		},
		{
			name:     "first observation pairs with itself",
			readings: []reading{{3, true}},
			wantOK:   true,
			want:     Pair[int]{Old: 3, Current: 3},
		},
		{
			name:     "edge",
			readings: []reading{{3, true}, {4, true}},
			wantOK:   true,
			want:     Pair[int]{Old: 3, Current: 4},
		},
		{
			name:     "failure after edge hides the edge",
			readings: []reading{{3, true}, {4, true}, {0, false}},
			wantOK:   true,
			want:     Pair[int]{Old: 4, Current: 4},
		},
		{
			name:     "recovery after failure compares with last good value",
			readings: []reading{{3, true}, {0, false}, {4, true}},
			wantOK:   true,
			want:     Pair[int]{Old: 3, Current: 4},
		},
		{
			name:     "failure before first success then success",
			readings: []reading{{0, false}, {7, true}},
			wantOK:   true,
			want:     Pair[int]{Old: 7, Current: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New[int]()
			for _, r := range tt.readings {
				w.Update(r.value, r.ok)
			}
			got, ok := w.Pair()
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("pair = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// Once warm, no sequence of updates can make Pair report false.
func TestWatcherStaysWarm(t *testing.T) {
	w := New[string]()
	w.Update("a", true)
	pattern := []bool{false, true, false, false, true, true, false}
	for i := 0; i < 100; i++ {
		ok := pattern[i%len(pattern)]
		w.Update("v", ok)
		if _, warm := w.Pair(); !warm {
			t.Fatalf("pair lost after update %d", i)
		}
		if w.State() != Warm {
			t.Fatalf("state = %v after update %d", w.State(), i)
		}
	}
}

func TestUpdateErr(t *testing.T) {
	w := New[uint8]()
	w.UpdateErr(3, nil)
	w.UpdateErr(9, errors.New("read fault"))
	p, ok := w.Pair()
	if !ok || p.Changed() || p.Current != 3 {
		t.Errorf("pair = %+v ok=%v", p, ok)
	}
	if cur, ok := w.Current(); !ok || cur != 3 {
		t.Errorf("Current = %d ok=%v", cur, ok)
	}
}

func TestStateString(t *testing.T) {
	if Empty.String() != "empty" || Warm.String() != "warm" {
		t.Error("unexpected state names")
	}
}
