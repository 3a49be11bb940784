package process

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
)

func TestMatchesName(t *testing.T) {
	tests := []struct {
		candidate string
		name      string
		want      bool
	}{
		{"Solar-Win64-Shipping.exe", "Solar-Win64-Shipping", true},
		{"solar-win64-shipping.EXE", "Solar-Win64-Shipping.exe", true},
		{`Z:\games\Solar Ash\Solar\Binaries\Win64\Solar-Win64-Shipping.exe`, "Solar-Win64-Shipping", true},
		{"/home/me/.steam/steamapps/common/Solar Ash/Solar/Binaries/Win64/Solar-Win64-Shipping.exe", "Solar-Win64-Shipping.exe", true},
		{"Solar-Win64-Shipping-Debug.exe", "Solar-Win64-Shipping", false},
		{"", "Solar-Win64-Shipping", false},
		{"explorer.exe", "Solar-Win64-Shipping", false},
	}
	for _, tt := range tests {
		if got := matchesName(tt.candidate, tt.name); got != tt.want {
			t.Errorf("matchesName(%q, %q) = %v, want %v", tt.candidate, tt.name, got, tt.want)
		}
	}
}

const sampleMaps = `140000000-140001000 r--p 00000000 00:2d 1234 /games/Solar Ash/Solar/Binaries/Win64/Solar-Win64-Shipping.exe
140001000-144a00000 r-xp 00001000 00:2d 1234 /games/Solar Ash/Solar/Binaries/Win64/Solar-Win64-Shipping.exe
144a00000-145000000 rw-p 04a00000 00:2d 1234 /games/Solar Ash/Solar/Binaries/Win64/Solar-Win64-Shipping.exe
7f0000000000-7f0000100000 rw-p 00000000 00:00 0
7ffd00000000-7ffd00021000 rw-p 00000000 00:00 0 [stack]
7f1000000000-7f1000200000 r-xp 00000000 08:01 99 /usr/lib/wine/x86_64-windows/ntdll.dll
`

func TestParseMaps(t *testing.T) {
	region, err := parseMaps(strings.NewReader(sampleMaps), "Solar-Win64-Shipping.exe")
	if err != nil {
		t.Fatalf("parseMaps: %v", err)
	}
	if region.Base != 0x140000000 || region.End() != 0x145000000 {
		t.Errorf("region = %v", region)
	}

	ntdll, err := parseMaps(strings.NewReader(sampleMaps), "ntdll.dll")
	if err != nil || ntdll.Size != 0x200000 {
		t.Errorf("ntdll = %v, %v", ntdll, err)
	}

	_, err = parseMaps(strings.NewReader(sampleMaps), "kernel32.dll")
	if !errors.Is(err, apperrors.ErrModuleNotFound) {
		t.Errorf("err = %v, want ErrModuleNotFound", err)
	}
}

func TestParseMapsMalformedRange(t *testing.T) {
	_, err := parseMaps(strings.NewReader("zzzz r--p 0 00:00 1 /x/game.exe\n"), "game.exe")
	if err == nil {
		t.Error("malformed range accepted")
	}
}

func TestExitMonitor(t *testing.T) {
	var alive atomic.Bool
	alive.Store(true)
	m := newExitMonitor(alive.Load, time.Millisecond)
	defer m.shutdown()

	select {
	case <-m.Done():
		t.Fatal("Done closed while alive")
	case <-time.After(10 * time.Millisecond):
	}

	alive.Store(false)
	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("Done not closed after exit")
	}
}

func TestExitMonitorShutdownIsIdempotent(t *testing.T) {
	m := newExitMonitor(func() bool { return true }, time.Millisecond)
	m.shutdown()
	m.shutdown()
	select {
	case <-m.Done():
		t.Error("shutdown must not report an exit")
	default:
	}
}

func TestAttachHonoursCancel(t *testing.T) {
	f := NewFinder(time.Millisecond, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Attach(ctx, "no-such-process-solarsplit-test")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("err = %v, want DeadlineExceeded", err)
	}
}
