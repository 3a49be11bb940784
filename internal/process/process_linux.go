//go:build linux

package process

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/unix"

	"github.com/provide-io/solarsplit/pkg/autosplit"
	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
)

// commLimit is the kernel's limit on /proc/<pid>/comm, excluding the NUL.
const commLimit = 15

// Handle reads another process with process_vm_readv. Windows builds run
// under Wine or Proton show up as ordinary Linux processes.
type Handle struct {
	pid     int
	logger  hclog.Logger
	monitor *exitMonitor
}

func findProcess(name string) (int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return 0, fmt.Errorf("listing /proc: %w", err)
	}
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid == os.Getpid() {
			continue
		}
		if procMatches(pid, name) {
			return pid, nil
		}
	}
	return 0, fmt.Errorf("%s: %w", name, apperrors.ErrProcessNotFound)
}

func procMatches(pid int, name string) bool {
	dir := filepath.Join("/proc", strconv.Itoa(pid))

	if comm, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		c := strings.TrimSpace(string(comm))
		want := strings.TrimSuffix(name, ".exe")
		if len(want) > commLimit {
			want = want[:commLimit]
		}
		if strings.EqualFold(c, want) && len(c) == commLimit {
			// Truncated name: confirm against the command line.
			return cmdlineMatches(dir, name)
		}
		if matchesName(c, name) {
			return true
		}
	}
	return cmdlineMatches(dir, name)
}

func cmdlineMatches(dir, name string) bool {
	cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil || len(cmdline) == 0 {
		return false
	}
	argv0, _, _ := bytes.Cut(cmdline, []byte{0})
	return matchesName(string(argv0), name)
}

func openProcess(pid int, logger hclog.Logger) (autosplit.Process, error) {
	if !isProcessRunning(pid) {
		return nil, fmt.Errorf("pid %d: %w", pid, apperrors.ErrProcessExited)
	}
	h := &Handle{
		pid:    pid,
		logger: logger.With("pid", pid),
	}
	h.monitor = newExitMonitor(func() bool { return isProcessRunning(pid) }, ExitPollInterval)
	return h, nil
}

// isProcessRunning checks if a process with given PID is still running.
func isProcessRunning(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 checks for existence without delivering anything.
	err = proc.Signal(syscall.Signal(0))
	if err != nil && !errors.Is(err, syscall.EPERM) {
		return false
	}
	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}
	// Zombies keep their pid until reaped but have no memory to read.
	if i := bytes.LastIndexByte(stat, ')'); i >= 0 && i+2 < len(stat) {
		return stat[i+2] != 'Z'
	}
	return true
}

// ReadMemory implements memory.Reader.
func (h *Handle) ReadMemory(addr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	local := []unix.Iovec{{Base: &buf[0]}}
	local[0].SetLen(len(buf))
	remote := []unix.RemoteIovec{{Base: uintptr(addr), Len: len(buf)}}

	n, err := unix.ProcessVMReadv(h.pid, local, remote, 0)
	if err != nil {
		return fmt.Errorf("read 0x%x: %w: %v", addr, apperrors.ErrUnmapped, err)
	}
	if n != len(buf) {
		return fmt.Errorf("read 0x%x: short read %d/%d: %w", addr, n, len(buf), apperrors.ErrUnmapped)
	}
	return nil
}

// ModuleRange locates a mapped image by file name.
func (h *Handle) ModuleRange(name string) (memory.Region, error) {
	f, err := os.Open(filepath.Join("/proc", strconv.Itoa(h.pid), "maps"))
	if err != nil {
		return memory.Region{}, fmt.Errorf("opening maps: %w", err)
	}
	defer f.Close()
	return parseMaps(f, name)
}

// PID returns the process id.
func (h *Handle) PID() int {
	return h.pid
}

// Done is closed when the process exits.
func (h *Handle) Done() <-chan struct{} {
	return h.monitor.Done()
}

// Close stops exit monitoring.
func (h *Handle) Close() error {
	h.monitor.shutdown()
	h.logger.Debug("🔌 Detached from process")
	return nil
}
