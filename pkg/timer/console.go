package timer

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Console drives a Clock and prints one coloured line per run event.
// Pause and resume are printed only when they change the clock.
type Console struct {
	clock *Clock
	out   io.Writer

	start  *color.Color
	split  *color.Color
	reset  *color.Color
	paused *color.Color
}

// NewConsole prints events for clock to out. Colour follows
// color.NoColor, which is off when out is not a terminal.
func NewConsole(clock *Clock, out io.Writer) *Console {
	return &Console{
		clock:  clock,
		out:    out,
		start:  color.New(color.FgGreen, color.Bold),
		split:  color.New(color.FgCyan),
		reset:  color.New(color.FgYellow),
		paused: color.New(color.Faint),
	}
}

func (c *Console) Reset() {
	wasRunning := c.clock.Phase() != NotRunning
	c.clock.Reset()
	if wasRunning {
		c.reset.Fprintln(c.out, "↺ reset")
	}
}

func (c *Console) Start() {
	if c.clock.Phase() != NotRunning {
		return
	}
	c.clock.Start()
	c.start.Fprintln(c.out, "▶ run started")
}

func (c *Console) Split() {
	before := len(c.clock.Splits())
	c.clock.Split()
	splits := c.clock.Splits()
	if len(splits) == before {
		return
	}
	s := splits[len(splits)-1]
	c.split.Fprintf(c.out, "✂ split %d  real %s  game %s\n",
		s.Index+1, FormatDuration(s.RealTime), FormatDuration(s.GameTime))
	if c.clock.Phase() == Ended {
		c.start.Fprintf(c.out, "🏁 run finished  game %s\n", FormatDuration(s.GameTime))
	}
}

func (c *Console) PauseGameTime() {
	if c.clock.GameTimePaused() {
		return
	}
	c.clock.PauseGameTime()
	if c.clock.Phase() == Running {
		c.paused.Fprintf(c.out, "⏸ loading  game %s\n", FormatDuration(c.clock.GameTime()))
	}
}

func (c *Console) ResumeGameTime() {
	if !c.clock.GameTimePaused() {
		return
	}
	c.clock.ResumeGameTime()
	if c.clock.Phase() == Running {
		fmt.Fprintf(c.out, "⏵ playing  game %s\n", FormatDuration(c.clock.GameTime()))
	}
}
