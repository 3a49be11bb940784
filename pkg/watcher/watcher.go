// Package watcher turns a per-tick fallible read into an (old, current)
// pair for edge detection.
package watcher

// State is the warm-up state of a Watcher.
type State uint8

const (
	// Empty means no read has ever succeeded.
	Empty State = iota
	// Warm means at least one read has succeeded; a pair is always available.
	Warm
)

func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Warm:
		return "warm"
	default:
		return "unknown"
	}
}

// Pair holds the value accepted before this tick and the value for this tick.
type Pair[T comparable] struct {
	Old     T
	Current T
}

// Changed reports whether the value moved this tick.
func (p Pair[T]) Changed() bool {
	return p.Old != p.Current
}

// Watcher retains the previous and current accepted value of a polled
// quantity. Updates must happen exactly once per tick.
type Watcher[T comparable] struct {
	state State
	pair  Pair[T]
}

// New returns an empty watcher.
func New[T comparable]() *Watcher[T] {
	return &Watcher[T]{}
}

// Update feeds this tick's read. When ok is false the read failed: the last
// accepted value is kept and reported as both old and current, so a
// transient fault neither clears history nor produces an edge.
func (w *Watcher[T]) Update(value T, ok bool) {
	switch {
	case ok && w.state == Empty:
		w.pair = Pair[T]{Old: value, Current: value}
		w.state = Warm
	case ok:
		w.pair = Pair[T]{Old: w.pair.Current, Current: value}
	case w.state == Warm:
		w.pair.Old = w.pair.Current
	}
}

// UpdateErr is Update for reads that return an error.
func (w *Watcher[T]) UpdateErr(value T, err error) {
	w.Update(value, err == nil)
}

// Pair returns the current pair; ok is false until the first successful read.
func (w *Watcher[T]) Pair() (Pair[T], bool) {
	return w.pair, w.state == Warm
}

// Current returns the latest accepted value.
func (w *Watcher[T]) Current() (T, bool) {
	return w.pair.Current, w.state == Warm
}

// State reports the warm-up state.
func (w *Watcher[T]) State() State {
	return w.state
}
