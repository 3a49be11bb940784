// Package timer provides the timer actions the splitter drives.
package timer

import (
	"fmt"
	"time"
)

// Timer is the control surface of a speedrun timer. Calls are fire and
// forget and must be harmless when redundant, such as pausing game time
// that is already paused.
type Timer interface {
	Reset()
	Start()
	Split()
	PauseGameTime()
	ResumeGameTime()
}

// Multi fans every call out to each timer in order.
type Multi []Timer

func (m Multi) Reset() {
	for _, t := range m {
		t.Reset()
	}
}

func (m Multi) Start() {
	for _, t := range m {
		t.Start()
	}
}

func (m Multi) Split() {
	for _, t := range m {
		t.Split()
	}
}

func (m Multi) PauseGameTime() {
	for _, t := range m {
		t.PauseGameTime()
	}
}

func (m Multi) ResumeGameTime() {
	for _, t := range m {
		t.ResumeGameTime()
	}
}

// FormatDuration renders d as m:ss.mmm, or h:mm:ss.mmm past an hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	ms %= 1000
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%d:%02d.%03d", m, s, ms)
}
