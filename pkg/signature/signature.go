// Package signature finds byte patterns with wildcard positions inside a
// foreign address space.
package signature

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
)

// ChunkSize is how much of a region is read per ReadMemory call while scanning.
const ChunkSize = 64 * 1024

// Signature is a compiled byte pattern. mask[i] is true where the pattern
// byte must match exactly; false marks a wildcard.
type Signature struct {
	bytes []byte
	mask  []bool
	text  string
}

// Parse compiles a pattern such as "74 09 48 8D 15 ?? ?? ?? ?? EB 16".
// Tokens are whitespace separated hex bytes; "?" or "??" is a wildcard.
func Parse(pattern string) (Signature, error) {
	fields := strings.Fields(pattern)
	if len(fields) == 0 {
		return Signature{}, fmt.Errorf("%w: empty pattern", apperrors.ErrInvalidSignature)
	}

	sig := Signature{
		bytes: make([]byte, len(fields)),
		mask:  make([]bool, len(fields)),
		text:  strings.Join(fields, " "),
	}
	for i, field := range fields {
		if field == "?" || field == "??" {
			continue
		}
		if len(field) != 2 {
			return Signature{}, fmt.Errorf("%w: token %q at %d", apperrors.ErrInvalidSignature, field, i)
		}
		v, err := strconv.ParseUint(field, 16, 8)
		if err != nil {
			return Signature{}, fmt.Errorf("%w: token %q at %d", apperrors.ErrInvalidSignature, field, i)
		}
		sig.bytes[i] = byte(v)
		sig.mask[i] = true
	}

	if !sig.mask[0] {
		return Signature{}, fmt.Errorf("%w: pattern must not start with a wildcard", apperrors.ErrInvalidSignature)
	}

	return sig, nil
}

// MustParse is Parse for package-level constants; it panics on a bad pattern.
func MustParse(pattern string) Signature {
	sig, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return sig
}

// Len returns the pattern length in bytes.
func (s Signature) Len() int {
	return len(s.bytes)
}

func (s Signature) String() string {
	return s.text
}

// Match returns the offset of the first match in data, or -1.
func (s Signature) Match(data []byte) int {
	n := len(s.bytes)
	if n == 0 || len(data) < n {
		return -1
	}

	first := s.bytes[0]
	for i := 0; i <= len(data)-n; i++ {
		if data[i] != first {
			continue
		}
		if s.matchAt(data[i:]) {
			return i
		}
	}
	return -1
}

func (s Signature) matchAt(data []byte) bool {
	for j := 1; j < len(s.bytes); j++ {
		if s.mask[j] && data[j] != s.bytes[j] {
			return false
		}
	}
	return true
}

// Scan searches region in one linear pass and returns the address of the
// first match. Consecutive chunks overlap by Len()-1 bytes so a match
// spanning a chunk boundary is still found. A read fault anywhere in the
// region ends the scan with no match; callers retry on a later attempt.
func (s Signature) Scan(r memory.Reader, region memory.Region) (uint64, bool) {
	n := uint64(len(s.bytes))
	if n == 0 || region.Size < n {
		return 0, false
	}

	overlap := n - 1
	buf := make([]byte, ChunkSize+overlap)
	for addr := region.Base; addr+n <= region.End(); addr += ChunkSize {
		size := uint64(len(buf))
		if remaining := region.End() - addr; remaining < size {
			size = remaining
		}
		chunk := buf[:size]
		if err := r.ReadMemory(addr, chunk); err != nil {
			return 0, false
		}
		if off := s.Match(chunk); off >= 0 {
			return addr + uint64(off), true
		}
	}
	return 0, false
}
