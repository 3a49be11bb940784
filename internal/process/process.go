// Package process attaches to a running game process and reads its memory.
package process

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/autosplit"
)

// ExitPollInterval is how often a handle checks whether its process is alive.
const ExitPollInterval = 250 * time.Millisecond

// Finder waits for a process by name and opens it for reading.
type Finder struct {
	poll   time.Duration
	logger hclog.Logger
}

// NewFinder polls for the process every poll interval.
func NewFinder(poll time.Duration, logger hclog.Logger) *Finder {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Finder{poll: poll, logger: logger}
}

// Attach blocks until a process called name is running and can be opened.
func (f *Finder) Attach(ctx context.Context, name string) (autosplit.Process, error) {
	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		pid, err := findProcess(name)
		if err == nil {
			proc, err := openProcess(pid, f.logger)
			if err == nil {
				return proc, nil
			}
			f.logger.Debug("Failed to open process", "pid", pid, "error", err)
		} else {
			f.logger.Trace("Process not running yet", "name", name, "error", err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// matchesName reports whether an executable path or name refers to the
// process name, ignoring case, directories and a trailing ".exe".
func matchesName(candidate, name string) bool {
	candidate = strings.ReplaceAll(candidate, `\`, "/")
	candidate = path.Base(candidate)
	candidate = strings.TrimSuffix(strings.ToLower(candidate), ".exe")
	name = strings.TrimSuffix(strings.ToLower(name), ".exe")
	return candidate != "" && candidate == name
}

// exitMonitor closes done once alive reports false or stop is closed.
type exitMonitor struct {
	done chan struct{}
	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func newExitMonitor(alive func() bool, interval time.Duration) *exitMonitor {
	m := &exitMonitor{
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if !alive() {
				close(m.done)
				return
			}
			select {
			case <-m.stop:
				return
			case <-ticker.C:
			}
		}
	}()
	return m
}

// Done is closed when the process has exited.
func (m *exitMonitor) Done() <-chan struct{} {
	return m.done
}

// shutdown stops polling and waits for the monitor goroutine.
func (m *exitMonitor) shutdown() {
	m.once.Do(func() {
		close(m.stop)
		m.wg.Wait()
	})
}
