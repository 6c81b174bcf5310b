//go:build windows

package region

import (
	"golang.org/x/sys/windows"
)

// processReader reads the process's own memory with ReadProcessMemory,
// which fails cleanly for unmapped ranges instead of faulting.
type processReader struct {
	handle windows.Handle
}

func newOSReader() (Reader, error) {
	return &processReader{handle: windows.CurrentProcess()}, nil
}

func (p *processReader) ReadMemory(buf []byte, addr uint64) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	var read uintptr
	err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(len(buf)), &read)
	if err != nil {
		return int(read), err
	}
	return int(read), nil
}

// Close is a no-op: CurrentProcess is a pseudo-handle.
func (p *processReader) Close() error {
	return nil
}
