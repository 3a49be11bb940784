//go:build windows

package process

import (
	"fmt"
	"strings"
	"sync"
	"unsafe"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sys/windows"

	"github.com/provide-io/solarsplit/pkg/autosplit"
	apperrors "github.com/provide-io/solarsplit/pkg/errors"
	"github.com/provide-io/solarsplit/pkg/memory"
)

const openAccess = windows.PROCESS_VM_READ |
	windows.PROCESS_QUERY_LIMITED_INFORMATION |
	windows.SYNCHRONIZE

// Handle reads another process with ReadProcessMemory.
type Handle struct {
	pid     int
	handle  windows.Handle
	logger  hclog.Logger
	monitor *exitMonitor
	once    sync.Once
}

func findProcess(name string) (int, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return 0, fmt.Errorf("process snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Process32First(snap, &entry); err == nil; err = windows.Process32Next(snap, &entry) {
		if matchesName(windows.UTF16ToString(entry.ExeFile[:]), name) {
			return int(entry.ProcessID), nil
		}
	}
	return 0, fmt.Errorf("%s: %w", name, apperrors.ErrProcessNotFound)
}

func openProcess(pid int, logger hclog.Logger) (autosplit.Process, error) {
	handle, err := windows.OpenProcess(openAccess, false, uint32(pid))
	if err != nil {
		return nil, fmt.Errorf("OpenProcess %d: %w", pid, err)
	}
	h := &Handle{
		pid:    pid,
		handle: handle,
		logger: logger.With("pid", pid),
	}
	h.monitor = newExitMonitor(h.alive, ExitPollInterval)
	return h, nil
}

func (h *Handle) alive() bool {
	event, err := windows.WaitForSingleObject(h.handle, 0)
	if err != nil {
		return false
	}
	return event != windows.WAIT_OBJECT_0
}

// ReadMemory implements memory.Reader.
func (h *Handle) ReadMemory(addr uint64, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	var n uintptr
	err := windows.ReadProcessMemory(h.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &n)
	if err != nil {
		return fmt.Errorf("read 0x%x: %w: %v", addr, apperrors.ErrUnmapped, err)
	}
	if int(n) != len(buf) {
		return fmt.Errorf("read 0x%x: short read %d/%d: %w", addr, n, len(buf), apperrors.ErrUnmapped)
	}
	return nil
}

// ModuleRange returns the base and size of a loaded module.
func (h *Handle) ModuleRange(name string) (memory.Region, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(h.pid))
	if err != nil {
		return memory.Region{}, fmt.Errorf("module snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	for err = windows.Module32First(snap, &entry); err == nil; err = windows.Module32Next(snap, &entry) {
		if strings.EqualFold(windows.UTF16ToString(entry.Module[:]), name) {
			return memory.Region{
				Base: uint64(entry.ModBaseAddr),
				Size: uint64(entry.ModBaseSize),
			}, nil
		}
	}
	return memory.Region{}, fmt.Errorf("%s: %w", name, apperrors.ErrModuleNotFound)
}

// PID returns the process id.
func (h *Handle) PID() int {
	return h.pid
}

// Done is closed when the process exits.
func (h *Handle) Done() <-chan struct{} {
	return h.monitor.Done()
}

// Close stops exit monitoring and releases the process handle.
func (h *Handle) Close() error {
	var err error
	h.once.Do(func() {
		h.monitor.shutdown()
		err = windows.CloseHandle(h.handle)
		h.logger.Debug("🔌 Detached from process")
	})
	return err
}
