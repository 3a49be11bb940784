package timer

import "github.com/hashicorp/go-hclog"

// Logged wraps a Timer and logs each action. Pause and resume arrive every
// tick, so they are logged only when the requested state changes.
type Logged struct {
	next   Timer
	logger hclog.Logger

	known  bool
	paused bool
}

// NewLogged logs calls before forwarding them to next.
func NewLogged(next Timer, logger hclog.Logger) *Logged {
	return &Logged{next: next, logger: logger}
}

func (l *Logged) Reset() {
	l.logger.Info("↺ Timer reset")
	l.next.Reset()
}

func (l *Logged) Start() {
	l.logger.Info("▶ Timer start")
	l.next.Start()
}

func (l *Logged) Split() {
	l.logger.Info("✂ Timer split")
	l.next.Split()
}

func (l *Logged) PauseGameTime() {
	if !l.known || !l.paused {
		l.logger.Debug("⏸ Game time paused")
	}
	l.known, l.paused = true, true
	l.next.PauseGameTime()
}

func (l *Logged) ResumeGameTime() {
	if !l.known || l.paused {
		l.logger.Debug("⏵ Game time resumed")
	}
	l.known, l.paused = true, false
	l.next.ResumeGameTime()
}
