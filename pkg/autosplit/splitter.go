// Package autosplit drives a speedrun timer from the memory of a running
// Solar Ash process.
package autosplit

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/memory"
	"github.com/provide-io/solarsplit/pkg/resolver"
)

// Process is an attached game process.
type Process interface {
	memory.Reader
	ModuleRange(name string) (memory.Region, error)
	PID() int
	// Done is closed when the process exits.
	Done() <-chan struct{}
	Close() error
}

// Attacher waits for a process by name.
type Attacher interface {
	Attach(ctx context.Context, name string) (Process, error)
}

// Options configure the splitter loop.
type Options struct {
	ProcessName   string
	ModuleName    string
	TickInterval  time.Duration
	RetryInterval time.Duration
}

// DefaultOptions ticks at 120 Hz and retries root resolution every second.
func DefaultOptions() Options {
	return Options{
		ProcessName:   layout.ProcessName,
		ModuleName:    layout.ModuleName,
		TickInterval:  time.Second / 120,
		RetryInterval: time.Second,
	}
}

// Splitter runs sessions back to back for as long as its context lives.
type Splitter struct {
	attacher Attacher
	timer    Timer
	settings SettingsSource
	opts     Options
	logger   hclog.Logger

	// OnTick, when set, is called after every tick with the live session.
	OnTick func(*Session)
}

// New creates a splitter.
func New(attacher Attacher, t Timer, settings SettingsSource, opts Options, logger hclog.Logger) *Splitter {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	defaults := DefaultOptions()
	if opts.ProcessName == "" {
		opts.ProcessName = defaults.ProcessName
	}
	if opts.ModuleName == "" {
		opts.ModuleName = defaults.ModuleName
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaults.TickInterval
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = defaults.RetryInterval
	}
	return &Splitter{
		attacher: attacher,
		timer:    t,
		settings: settings,
		opts:     opts,
		logger:   logger,
	}
}

// Run attaches, resolves roots and ticks until the process exits, then
// waits for the next launch. It only returns when ctx is done.
func (s *Splitter) Run(ctx context.Context) error {
	for {
		s.logger.Info("⏳ Waiting for game process", "name", s.opts.ProcessName)
		proc, err := s.attacher.Attach(ctx, s.opts.ProcessName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("⚠️ Attach failed", "error", err)
			if err := sleep(ctx, s.opts.RetryInterval); err != nil {
				return err
			}
			continue
		}

		logger := s.logger.With("pid", proc.PID())
		logger.Info("🔗 Attached to game process")
		err = s.runSession(ctx, proc, logger)
		if cerr := proc.Close(); cerr != nil {
			logger.Debug("Failed to close process handle", "error", cerr)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("⚠️ Session ended", "error", err)
		}
		logger.Info("👋 Game process exited")
	}
}

// runSession is the body that lives exactly as long as the process.
func (s *Splitter) runSession(ctx context.Context, proc Process, logger hclog.Logger) error {
	ctx, cancel := untilExit(ctx, proc)
	defer cancel()

	roots, err := resolver.WaitForRoots(ctx, proc, s.opts.ModuleName, s.opts.RetryInterval, logger)
	if err != nil {
		return err
	}

	session := NewSession(proc, roots, logger)
	logger.Debug("🔁 Entering tick loop", "interval", s.opts.TickInterval)

	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()
	for {
		session.Tick(s.settings.Settings(), s.timer)
		if s.OnTick != nil {
			s.OnTick(session)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// untilExit derives a context that is cancelled as soon as proc exits.
func untilExit(ctx context.Context, proc Process) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-proc.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
