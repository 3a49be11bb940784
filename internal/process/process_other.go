//go:build !linux && !windows

package process

import (
	"fmt"
	"runtime"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/solarsplit/pkg/autosplit"
	apperrors "github.com/provide-io/solarsplit/pkg/errors"
)

func findProcess(name string) (int, error) {
	return 0, fmt.Errorf("%s: %w", runtime.GOOS, apperrors.ErrUnsupportedPlatform)
}

func openProcess(pid int, logger hclog.Logger) (autosplit.Process, error) {
	return nil, fmt.Errorf("%s: %w", runtime.GOOS, apperrors.ErrUnsupportedPlatform)
}
