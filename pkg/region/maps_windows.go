//go:build windows

package region

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// moduleEnumerator walks the loaded-module list via a Toolhelp32
// snapshot, then VirtualQuery over each module's address range to find
// the committed executable page runs inside it.
type moduleEnumerator struct{}

func newOSEnumerator() (Enumerator, error) {
	return &moduleEnumerator{}, nil
}

func (e *moduleEnumerator) Enumerate() ([]Region, error) {
	snap, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPMODULE, 0)
	if err != nil {
		return nil, fmt.Errorf("region: CreateToolhelp32Snapshot: %w", err)
	}
	defer windows.CloseHandle(snap)

	var regions []Region

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))
	if err := windows.Module32First(snap, &entry); err != nil {
		return nil, fmt.Errorf("region: Module32First: %w", err)
	}
	for {
		modRegions, err := queryModule(uint64(entry.ModBaseAddr), uint64(entry.ModBaseSize), windows.UTF16ToString(entry.ExePath[:]))
		if err != nil {
			return nil, err
		}
		regions = append(regions, modRegions...)

		err = windows.Module32Next(snap, &entry)
		if err == windows.ERROR_NO_MORE_FILES {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("region: Module32Next: %w", err)
		}
	}
	return regions, nil
}

// queryModule walks [base, base+size) in VirtualQuery region-run steps.
func queryModule(base, size uint64, modulePath string) ([]Region, error) {
	var regions []Region

	addr := uintptr(base)
	end := uintptr(base + size)
	for addr < end {
		var mbi windows.MemoryBasicInformation
		if err := windows.VirtualQuery(addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
			return nil, fmt.Errorf("region: VirtualQuery at %#x: %w", addr, err)
		}
		if mbi.RegionSize == 0 {
			return nil, fmt.Errorf("region: VirtualQuery returned empty run at %#x", addr)
		}

		// Guard pages fire one-shot access semantics when touched;
		// reading them would disarm the guard, a side effect on
		// process state we must not have.
		if mbi.State == windows.MEM_COMMIT && mbi.Protect&windows.PAGE_GUARD == 0 {
			readable, writable, executable := decodeProtect(mbi.Protect)
			if readable || writable || executable {
				regions = append(regions, Region{
					Start:      uint64(mbi.BaseAddress),
					Size:       uint64(mbi.RegionSize),
					Readable:   readable,
					Writable:   writable,
					Executable: executable,
					Module:     modulePath,
				})
			}
		}

		addr = mbi.BaseAddress + mbi.RegionSize
	}
	return regions, nil
}

func decodeProtect(protect uint32) (readable, writable, executable bool) {
	switch protect &^ (windows.PAGE_GUARD | windows.PAGE_NOCACHE | windows.PAGE_WRITECOMBINE) {
	case windows.PAGE_READONLY:
		readable = true
	case windows.PAGE_READWRITE, windows.PAGE_WRITECOPY:
		readable, writable = true, true
	case windows.PAGE_EXECUTE:
		executable = true
	case windows.PAGE_EXECUTE_READ:
		readable, executable = true, true
	case windows.PAGE_EXECUTE_READWRITE, windows.PAGE_EXECUTE_WRITECOPY:
		readable, writable, executable = true, true, true
	}
	return readable, writable, executable
}
