package timer

import (
	"sync"
	"time"
)

// Phase is where a run currently is.
type Phase uint8

const (
	NotRunning Phase = iota
	Running
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotRunning:
		return "not_running"
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Split is one recorded segment boundary.
type Split struct {
	Index    int
	RealTime time.Duration
	GameTime time.Duration
}

// Clock is an in-process run timer. Game time only accrues while it is not
// paused, which is how load removal is expressed.
type Clock struct {
	mu  sync.Mutex
	now func() time.Time

	segments int
	phase    Phase
	started  time.Time
	ended    time.Time

	gamePaused  bool
	gameAccrued time.Duration
	gameResumed time.Time

	splits []Split
}

// NewClock creates a clock for a route of segments splits. Zero means the
// run never ends on its own.
func NewClock(segments int, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{segments: segments, now: now}
}

// Reset drops the current run.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = NotRunning
	c.splits = nil
	c.gameAccrued = 0
	c.gamePaused = false
}

// Start begins a run; it does nothing while a run is in progress.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != NotRunning {
		return
	}
	now := c.now()
	c.phase = Running
	c.started = now
	c.gameAccrued = 0
	c.gameResumed = now
	c.splits = nil
}

// Split records a segment; the last segment ends the run.
func (c *Clock) Split() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Running {
		return
	}
	now := c.now()
	c.splits = append(c.splits, Split{
		Index:    len(c.splits),
		RealTime: now.Sub(c.started),
		GameTime: c.gameTimeAt(now),
	})
	if c.segments > 0 && len(c.splits) >= c.segments {
		c.gameAccrued = c.gameTimeAt(now)
		c.gamePaused = true
		c.phase = Ended
		c.ended = now
	}
}

// PauseGameTime stops game time accrual.
func (c *Clock) PauseGameTime() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gamePaused {
		return
	}
	if c.phase == Running {
		c.gameAccrued = c.gameTimeAt(c.now())
	}
	c.gamePaused = true
}

// ResumeGameTime restarts game time accrual.
func (c *Clock) ResumeGameTime() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.gamePaused || c.phase == Ended {
		return
	}
	c.gamePaused = false
	c.gameResumed = c.now()
}

func (c *Clock) gameTimeAt(now time.Time) time.Duration {
	if c.phase == NotRunning {
		return 0
	}
	if c.gamePaused || c.phase == Ended {
		return c.gameAccrued
	}
	return c.gameAccrued + now.Sub(c.gameResumed)
}

// Phase returns the current run phase.
func (c *Clock) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// GameTimePaused reports whether game time is currently paused.
func (c *Clock) GameTimePaused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gamePaused
}

// RealTime returns elapsed wall time of the run.
func (c *Clock) RealTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.phase {
	case Running:
		return c.now().Sub(c.started)
	case Ended:
		return c.ended.Sub(c.started)
	default:
		return 0
	}
}

// GameTime returns elapsed game time, excluding paused spans.
func (c *Clock) GameTime() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameTimeAt(c.now())
}

// Splits returns a copy of the recorded splits.
func (c *Clock) Splits() []Split {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Split, len(c.splits))
	copy(out, c.splits)
	return out
}
