package testkit

import "sync"

// Timer actions as recorded by Recorder.
const (
	ActionReset  = "reset"
	ActionStart  = "start"
	ActionSplit  = "split"
	ActionPause  = "pause"
	ActionResume = "resume"
)

// Recorder is a timer that remembers every call.
type Recorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *Recorder) record(action string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

func (r *Recorder) Reset() {
	r.record(ActionReset)
}

func (r *Recorder) Start() {
	r.record(ActionStart)
}

func (r *Recorder) Split() {
	r.record(ActionSplit)
}

func (r *Recorder) PauseGameTime() {
	r.record(ActionPause)
}

func (r *Recorder) ResumeGameTime() {
	r.record(ActionResume)
}

// Actions returns a copy of every recorded call.
func (r *Recorder) Actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.actions))
	copy(out, r.actions)
	return out
}

// Count returns how many times action was recorded.
func (r *Recorder) Count(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.actions {
		if a == action {
			n++
		}
	}
	return n
}

// Last returns the most recent action, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.actions) == 0 {
		return ""
	}
	return r.actions[len(r.actions)-1]
}

// Clear forgets recorded calls.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
