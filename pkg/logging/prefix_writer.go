// Package logging builds the hclog loggers used across solarsplit.
package logging

import (
	"bytes"
	"io"
	"sync"
)

// PrefixWriter starts every complete line with prefix. A trailing partial
// line is held until its newline arrives or Flush is called.
type PrefixWriter struct {
	mu      sync.Mutex
	prefix  []byte
	writer  io.Writer
	pending []byte
}

// NewPrefixWriter creates a new PrefixWriter.
func NewPrefixWriter(prefix string, w io.Writer) *PrefixWriter {
	return &PrefixWriter{
		prefix: []byte(prefix),
		writer: w,
	}
}

// Write implements io.Writer. Each prefixed line reaches the underlying
// writer in a single call.
func (pw *PrefixWriter) Write(p []byte) (int, error) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	rest := p
	for {
		line, after, found := bytes.Cut(rest, []byte{'\n'})
		if !found {
			pw.pending = append(pw.pending, line...)
			return len(p), nil
		}
		if err := pw.emit(line, true); err != nil {
			return 0, err
		}
		rest = after
	}
}

// Flush writes out a held partial line, if any.
func (pw *PrefixWriter) Flush() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if len(pw.pending) == 0 {
		return nil
	}
	return pw.emit(nil, false)
}

func (pw *PrefixWriter) emit(tail []byte, newline bool) error {
	out := make([]byte, 0, len(pw.prefix)+len(pw.pending)+len(tail)+1)
	out = append(out, pw.prefix...)
	out = append(out, pw.pending...)
	out = append(out, tail...)
	if newline {
		out = append(out, '\n')
	}
	pw.pending = pw.pending[:0]
	_, err := pw.writer.Write(out)
	return err
}
