package region

// Enumerator produces the current set of mapped memory regions of this
// process, with permission bits and owning-module identity. It must be
// safely re-callable every cycle without side effects on process state;
// any error it returns is fatal to the checking loop.
type Enumerator interface {
	Enumerate() ([]Region, error)
}

// Reader reads bytes from this process's own address space through an
// OS primitive that fails with an error, rather than faulting, when the
// target pages have been unmapped. This makes "validate then read" a
// single atomic kernel call. Shape follows io.ReaderAt, with a uint64
// offset so all of a 64-bit address space is reachable.
type Reader interface {
	ReadMemory(buf []byte, addr uint64) (int, error)
	Close() error
}

// NewEnumerator returns the enumerator for the build platform, or
// ErrUnsupported where none exists.
func NewEnumerator() (Enumerator, error) {
	return newOSEnumerator()
}

// NewReader returns the memory reader for the build platform, or
// ErrUnsupported where none exists.
func NewReader() (Reader, error) {
	return newOSReader()
}
