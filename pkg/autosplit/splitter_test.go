package autosplit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/internal/testkit"
	"github.com/provide-io/solarsplit/pkg/layout"
)

// queueAttacher hands out queued processes, blocking when the queue is empty.
type queueAttacher struct {
	procs chan Process

	mu    sync.Mutex
	calls int
}

func (q *queueAttacher) Attach(ctx context.Context, name string) (Process, error) {
	q.mu.Lock()
	q.calls++
	q.mu.Unlock()
	if name != layout.ProcessName {
		return nil, errors.New("unexpected process name " + name)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p := <-q.procs:
		return p, nil
	}
}

func (q *queueAttacher) Calls() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.calls
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSplitterRunsSessionsAcrossRestarts(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "splitter_test",
		Level: hclog.Debug,
	})
	attacher := &queueAttacher{procs: make(chan Process, 2)}
	rec := &testkit.Recorder{}

	opts := DefaultOptions()
	opts.TickInterval = time.Millisecond
	opts.RetryInterval = time.Millisecond

	var (
		mu       sync.Mutex
		sessions []*Session
	)
	s := New(attacher, rec, StaticSettings(DefaultSettings()), opts, logger)
	s.OnTick = func(sess *Session) {
		mu.Lock()
		defer mu.Unlock()
		if len(sessions) == 0 || sessions[len(sessions)-1] != sess {
			sessions = append(sessions, sess)
		}
	}
	sessionCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(sessions)
	}

	first := testkit.NewProcess(testkit.NewGame())
	first.Locked(func(g *testkit.Game) {
		g.SetMap(layout.IntroCutsceneMap)
		g.SetGameState(layout.GameStateLoading)
	})
	attacher.procs <- first

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitFor(t, "first session", func() bool { return sessionCount() == 1 })
	first.Locked(func(g *testkit.Game) { g.SetGameState(layout.GameStatePlaying) })
	waitFor(t, "run start", func() bool { return rec.Count(testkit.ActionStart) == 1 })

	first.Exit()
	waitFor(t, "re-attach", func() bool { return attacher.Calls() == 2 })

	second := testkit.NewProcess(testkit.NewGame())
	attacher.procs <- second
	waitFor(t, "second session", func() bool { return sessionCount() == 2 })

	mu.Lock()
	fresh := sessions[1]
	mu.Unlock()
	if fresh == sessions[0] {
		t.Error("session state was reused across processes")
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if rec.Count(testkit.ActionStart) != 1 {
		t.Errorf("start calls = %d", rec.Count(testkit.ActionStart))
	}
}

func TestSplitterExitDuringRootResolution(t *testing.T) {
	attacher := &queueAttacher{procs: make(chan Process, 1)}
	g := testkit.NewGame()
	g.Mem.WriteBytes(testkit.WorldSigAt, make([]byte, 16))
	proc := testkit.NewProcess(g)
	attacher.procs <- proc

	opts := DefaultOptions()
	opts.RetryInterval = time.Hour
	s := New(attacher, &testkit.Recorder{}, StaticSettings(DefaultSettings()), opts, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	// The resolver is parked for an hour; exit must interrupt it at once.
	waitFor(t, "first attach", func() bool { return attacher.Calls() == 1 })
	proc.Exit()
	waitFor(t, "re-attach after exit", func() bool { return attacher.Calls() == 2 })

	cancel()
	<-done
}

func TestNewFillsDefaults(t *testing.T) {
	s := New(&queueAttacher{}, &testkit.Recorder{}, StaticSettings{}, Options{}, nil)
	want := DefaultOptions()
	if s.opts != want {
		t.Errorf("opts = %+v, want %+v", s.opts, want)
	}
}
