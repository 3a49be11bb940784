package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/internal/config"
	"github.com/provide-io/solarsplit/pkg/autosplit"
	"github.com/provide-io/solarsplit/pkg/resolver"
	"github.com/provide-io/solarsplit/pkg/watcher"
)

// scan attaches once, resolves the roots and prints one refresh of every
// watched value.
func scan(ctx context.Context, attacher autosplit.Attacher, cfg config.Config, logger hclog.Logger, out io.Writer) error {
	proc, err := attacher.Attach(ctx, cfg.ProcessName)
	if err != nil {
		return fmt.Errorf("attach %s: %w", cfg.ProcessName, err)
	}
	defer proc.Close()

	region, err := proc.ModuleRange(cfg.ModuleName)
	if err != nil {
		return err
	}
	roots, err := resolver.WaitForRoots(ctx, proc, cfg.ModuleName, cfg.RetryInterval, logger)
	if err != nil {
		return fmt.Errorf("resolve roots: %w", err)
	}

	session := autosplit.NewSession(proc, roots, logger)
	session.Refresh()

	fmt.Fprintf(out, "pid         %d\n", proc.PID())
	fmt.Fprintf(out, "module      %s\n", region)
	fmt.Fprintf(out, "name pool   0x%x\n", roots.NamePool)
	fmt.Fprintf(out, "world       0x%x\n", roots.World)
	fmt.Fprintf(out, "game state  %s\n", show(session.GameState))
	fmt.Fprintf(out, "flag count  %s\n", show(session.FlagCount))
	fmt.Fprintf(out, "map         %s\n", show(session.Map))
	fmt.Fprintf(out, "newest flag %s\n", show(session.NewestFlag))
	return nil
}

func show[T comparable](w *watcher.Watcher[T]) string {
	v, ok := w.Current()
	if !ok {
		return "<unreadable>"
	}
	return fmt.Sprintf("%v", v)
}
