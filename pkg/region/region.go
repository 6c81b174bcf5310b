// Package region discovers and models the executable memory mappings of
// the current process. Enumeration is platform-specific (procfs maps on
// Linux, Toolhelp32 plus VirtualQuery on Windows); everything else in
// the package is portable policy over the resulting region set.
package region

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrUnsupported is returned by the platform constructors on an OS for
// which no enumerator or reader exists.
var ErrUnsupported = errors.New("region: platform not supported")

// Region describes one mapped range of the process's address space as
// observed during a single enumeration. Regions are transient: a fresh
// set is built every cycle and only the Identity survives across cycles.
type Region struct {
	Start uint64
	Size  uint64

	Readable   bool
	Writable   bool
	Executable bool

	// Module is the path of the backing image, "" for anonymous
	// mappings, or a bracketed kernel pseudo-name such as "[vdso]".
	Module string
}

// End returns the first address past the region.
func (r Region) End() uint64 {
	return r.Start + r.Size
}

// Identity returns the key under which this mapping is tracked across
// cycles. Two samples refer to the same region iff their identities are
// equal; any difference, including the module path, means unload+reload
// rather than corruption.
func (r Region) Identity() Identity {
	return Identity{Start: r.Start, Size: r.Size, Module: r.Module}
}

// Identity is the (base address, length, owning module) tuple that
// matches a mapping across enumeration cycles. It is comparable and
// usable as a map key.
type Identity struct {
	Start  uint64
	Size   uint64
	Module string
}

func (id Identity) String() string {
	mod := id.Module
	if mod == "" {
		mod = "<anonymous>"
	}
	return fmt.Sprintf("%#x-%#x %s", id.Start, id.Start+id.Size, mod)
}

// MainImagePath resolves the path of the process's own executable image,
// following symlinks so it compares equal to the paths reported by
// enumeration. Resolved once at configuration time.
func MainImagePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("region: resolve main image: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		// A deleted or overlay-mounted executable still has a usable
		// nominal path.
		return exe, nil
	}
	return resolved, nil
}
