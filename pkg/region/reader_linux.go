//go:build linux

package region

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/sys/unix"
)

const procMemPath = "/proc/self/mem"

// memReader reads the process's own memory through /proc/self/mem.
// pread on the mem file returns EIO for an unmapped range instead of
// faulting, which is what lets a concurrent dlclose surface as a
// recoverable read error rather than a crash.
type memReader struct {
	fd int
}

func newOSReader() (Reader, error) {
	fd, err := unix.Open(procMemPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("region: open %s: %w", procMemPath, err)
	}
	return &memReader{fd: fd}, nil
}

func (m *memReader) ReadMemory(buf []byte, addr uint64) (int, error) {
	if addr > math.MaxInt64 {
		return 0, fmt.Errorf("region: address %#x outside pread offset range", addr)
	}
	total := 0
	for total < len(buf) {
		n, err := unix.Pread(m.fd, buf[total:], int64(addr)+int64(total))
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrUnexpectedEOF
		}
		total += n
	}
	return total, nil
}

func (m *memReader) Close() error {
	return unix.Close(m.fd)
}
