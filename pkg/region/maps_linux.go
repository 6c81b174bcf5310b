//go:build linux

package region

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const procMapsPath = "/proc/self/maps"

// procEnumerator enumerates mappings by parsing /proc/self/maps.
// Format per line: "start-end perms offset dev inode [pathname]".
type procEnumerator struct {
	mapsPath string
}

func newOSEnumerator() (Enumerator, error) {
	return &procEnumerator{mapsPath: procMapsPath}, nil
}

func (e *procEnumerator) Enumerate() ([]Region, error) {
	data, err := os.ReadFile(e.mapsPath)
	if err != nil {
		return nil, fmt.Errorf("region: read %s: %w", e.mapsPath, err)
	}
	regions, err := parseMaps(data)
	if err != nil {
		return nil, fmt.Errorf("region: parse %s: %w", e.mapsPath, err)
	}
	return regions, nil
}

func parseMaps(data []byte) ([]Region, error) {
	var regions []Region

	sc := bufio.NewScanner(bytes.NewReader(data))
	// Mapped file paths can exceed the default scanner line budget.
	sc.Buffer(make([]byte, 64*1024), 64*1024)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		r, err := parseMapsLine(line)
		if err != nil {
			return nil, err
		}
		// The fixed vsyscall page is kernel-owned and not readable
		// through /proc/self/mem; it also sits above the int64 offset
		// range pread accepts.
		if r.Module == "[vsyscall]" {
			continue
		}
		regions = append(regions, r)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}

func parseMapsLine(line string) (Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return Region{}, fmt.Errorf("short maps line %q", line)
	}

	startHex, endHex, ok := strings.Cut(fields[0], "-")
	if !ok {
		return Region{}, fmt.Errorf("bad address range %q", fields[0])
	}
	start, err := strconv.ParseUint(startHex, 16, 64)
	if err != nil {
		return Region{}, fmt.Errorf("bad start address %q", startHex)
	}
	end, err := strconv.ParseUint(endHex, 16, 64)
	if err != nil || end < start {
		return Region{}, fmt.Errorf("bad end address %q", endHex)
	}

	perms := fields[1]
	if len(perms) < 3 {
		return Region{}, fmt.Errorf("bad permission field %q", perms)
	}

	r := Region{
		Start:      start,
		Size:       end - start,
		Readable:   perms[0] == 'r',
		Writable:   perms[1] == 'w',
		Executable: perms[2] == 'x',
	}
	// Pathname is the sixth column when present; anonymous mappings
	// have none.
	if len(fields) >= 6 {
		r.Module = fields[5]
	}
	return r, nil
}
