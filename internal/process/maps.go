package process

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
)

// parseMaps finds module in a /proc/<pid>/maps listing and returns the span
// from its lowest to its highest mapping.
func parseMaps(r io.Reader, module string) (memory.Region, error) {
	var lo, hi uint64
	found := false

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		file := strings.Join(fields[5:], " ")
		if !matchesName(file, module) {
			continue
		}

		start, end, err := parseRange(fields[0])
		if err != nil {
			return memory.Region{}, err
		}
		if !found || start < lo {
			lo = start
		}
		if !found || end > hi {
			hi = end
		}
		found = true
	}
	if err := scanner.Err(); err != nil {
		return memory.Region{}, fmt.Errorf("reading maps: %w", err)
	}
	if !found {
		return memory.Region{}, fmt.Errorf("%s: %w", module, apperrors.ErrModuleNotFound)
	}
	return memory.Region{Base: lo, Size: hi - lo}, nil
}

func parseRange(s string) (uint64, uint64, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Errorf("malformed address range %q", s)
	}
	start, err := strconv.ParseUint(startStr, 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed address range %q: %w", s, err)
	}
	end, err := strconv.ParseUint(endStr, 16, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed address range %q: %w", s, err)
	}
	return start, end, nil
}
