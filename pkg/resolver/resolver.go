// Package resolver turns signature matches into the root addresses the
// rest of the splitter reads from.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/layout"
	"github.com/provide-io/solarsplit/pkg/memory"
	"github.com/provide-io/solarsplit/pkg/signature"
)

// Target describes one root: the pattern sits near a RIP-relative
// instruction whose 32-bit displacement lives DisplacementOffset bytes
// into the match. The root is match + AnchorOffset + displacement.
type Target struct {
	Name               string
	Signature          signature.Signature
	DisplacementOffset uint64
	AnchorOffset       uint64
}

var (
	// NamePool locates the interned name pool.
	NamePool = Target{
		Name:               "name_pool",
		Signature:          signature.MustParse(layout.NamePoolPattern),
		DisplacementOffset: layout.NamePoolDisplacement,
		AnchorOffset:       layout.NamePoolAnchor,
	}

	// World locates the global holding the current world pointer.
	World = Target{
		Name:               "world",
		Signature:          signature.MustParse(layout.WorldPattern),
		DisplacementOffset: layout.WorldDisplacement,
		AnchorOffset:       layout.WorldAnchor,
	}
)

// Locate scans region for the target and applies the displacement.
func (t Target) Locate(r memory.Reader, region memory.Region) (uint64, error) {
	match, ok := t.Signature.Scan(r, region)
	if !ok {
		return 0, fmt.Errorf("%s: %w", t.Name, apperrors.ErrSignatureNotFound)
	}
	disp, err := memory.ReadI32(r, match+t.DisplacementOffset)
	if err != nil {
		return 0, fmt.Errorf("%s: displacement: %w", t.Name, err)
	}
	addr := uint64(int64(match+t.AnchorOffset) + int64(disp))
	if addr == 0 {
		return 0, fmt.Errorf("%s: %w", t.Name, apperrors.ErrNullPointer)
	}
	return addr, nil
}

// Roots are the two process-space addresses everything else hangs off.
type Roots struct {
	NamePool uint64
	World    uint64
}

// MissingRootsError reports which roots could not be resolved.
type MissingRootsError struct {
	Missing []string
	Errs    []error
}

func (e *MissingRootsError) Error() string {
	if len(e.Missing) == 2 {
		return "failed to resolve both roots"
	}
	return fmt.Sprintf("failed to resolve %s", strings.Join(e.Missing, ", "))
}

func (e *MissingRootsError) Unwrap() []error {
	return e.Errs
}

// Resolve makes one attempt at locating both roots inside region.
func Resolve(r memory.Reader, region memory.Region) (Roots, error) {
	var roots Roots
	missing := &MissingRootsError{}

	for _, step := range []struct {
		target Target
		dst    *uint64
	}{
		{NamePool, &roots.NamePool},
		{World, &roots.World},
	} {
		addr, err := step.target.Locate(r, region)
		if err != nil {
			missing.Missing = append(missing.Missing, step.target.Name)
			missing.Errs = append(missing.Errs, err)
			continue
		}
		*step.dst = addr
	}

	if len(missing.Missing) > 0 {
		return Roots{}, missing
	}
	return roots, nil
}

// ModuleSource is the part of an attached process the resolver needs.
type ModuleSource interface {
	memory.Reader
	ModuleRange(name string) (memory.Region, error)
}

// WaitForRoots retries Resolve until both roots are found, waiting interval
// between attempts. There is no retry bound; only ctx ends the loop early.
func WaitForRoots(ctx context.Context, proc ModuleSource, module string, interval time.Duration, logger hclog.Logger) (Roots, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return Roots{}, ctx.Err()
		case <-timer.C:
		}

		roots, err := resolveOnce(proc, module, logger)
		if err == nil {
			logger.Info("✅ Resolved roots",
				"name_pool", fmt.Sprintf("0x%x", roots.NamePool),
				"world", fmt.Sprintf("0x%x", roots.World),
				"attempts", attempt,
			)
			return roots, nil
		}

		logger.Warn("⚠️ Root resolution failed, retrying", "attempt", attempt, "error", err)
		timer.Reset(interval)
	}
}

func resolveOnce(proc ModuleSource, module string, logger hclog.Logger) (Roots, error) {
	region, err := proc.ModuleRange(module)
	if err != nil {
		return Roots{}, err
	}
	logger.Debug("🔍 Scanning module", "module", module, "range", region.String())
	return Resolve(proc, region)
}
