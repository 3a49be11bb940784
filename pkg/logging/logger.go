package logging

import (
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-isatty"
)

const (
	// TerminalPrefix starts every text line written to a terminal.
	TerminalPrefix = "☀️ "
	// PlainPrefix replaces TerminalPrefix for pipes and files.
	PlainPrefix = "[solarsplit] "
)

// NewLogger returns the solarsplit logger: UTC timestamps, level parsed from
// level, and either JSON lines or prefixed text on output (stderr when nil).
func NewLogger(name string, level string, jsonFormat bool, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}

	// JSON consumers get raw lines.
	if !jsonFormat {
		output = NewPrefixWriter(LinePrefix(output), output)
	}

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: jsonFormat,
		Output:     output,
		TimeFormat: time.RFC3339,
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	}

	return hclog.New(opts)
}

// LinePrefix picks the emoji prefix for terminals and an ASCII one otherwise.
func LinePrefix(w io.Writer) string {
	if IsTerminal(w) {
		return TerminalPrefix
	}
	return PlainPrefix
}

// IsTerminal reports whether w is a console.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
