//go:build linux

package region

import (
	"testing"
)

const mapsFixture = `00400000-004b0000 r-xp 00000000 08:01 1234567                            /usr/bin/self
004b0000-004c0000 r--p 000b0000 08:01 1234567                            /usr/bin/self
004c0000-004d0000 rw-p 000c0000 08:01 1234567                            /usr/bin/self
7f2a00000000-7f2a00021000 rw-p 00000000 00:00 0
7f2a3c000000-7f2a3c1c0000 r-xp 00000000 08:01 7654321                    /usr/lib/x86_64-linux-gnu/libc.so.6
7f2a3d000000-7f2a3d002000 rwxp 00000000 00:00 0
7ffd5a000000-7ffd5a021000 rw-p 00000000 00:00 0                          [stack]
7ffd5a1f0000-7ffd5a1f2000 r-xp 00000000 00:00 0                          [vdso]
ffffffffff600000-ffffffffff601000 --xp 00000000 00:00 0                  [vsyscall]
`

func TestParseMaps(t *testing.T) {
	regions, err := parseMaps([]byte(mapsFixture))
	if err != nil {
		t.Fatalf("parseMaps: %v", err)
	}

	t.Run("vsyscall is dropped", func(t *testing.T) {
		for _, r := range regions {
			if r.Module == "[vsyscall]" {
				t.Error("kept [vsyscall] mapping")
			}
		}
	})

	t.Run("line count matches fixture", func(t *testing.T) {
		if len(regions) != 8 {
			t.Fatalf("parsed %d regions, want 8", len(regions))
		}
	})

	t.Run("addresses and size", func(t *testing.T) {
		r := regions[0]
		if r.Start != 0x400000 {
			t.Errorf("Start = %#x, want 0x400000", r.Start)
		}
		if r.Size != 0xb0000 {
			t.Errorf("Size = %#x, want 0xb0000", r.Size)
		}
		if r.End() != 0x4b0000 {
			t.Errorf("End = %#x, want 0x4b0000", r.End())
		}
	})

	t.Run("permission bits", func(t *testing.T) {
		r := regions[0] // r-xp
		if !r.Readable || r.Writable || !r.Executable {
			t.Errorf("r-xp decoded as r=%v w=%v x=%v", r.Readable, r.Writable, r.Executable)
		}
		rw := regions[2] // rw-p
		if !rw.Readable || !rw.Writable || rw.Executable {
			t.Errorf("rw-p decoded as r=%v w=%v x=%v", rw.Readable, rw.Writable, rw.Executable)
		}
		rwx := regions[5] // rwxp anonymous
		if !rwx.Writable || !rwx.Executable {
			t.Errorf("rwxp decoded as w=%v x=%v", rwx.Writable, rwx.Executable)
		}
	})

	t.Run("module paths", func(t *testing.T) {
		if regions[0].Module != "/usr/bin/self" {
			t.Errorf("Module = %q, want /usr/bin/self", regions[0].Module)
		}
		if regions[3].Module != "" {
			t.Errorf("anonymous mapping has Module %q, want empty", regions[3].Module)
		}
		if regions[7].Module != "[vdso]" {
			t.Errorf("Module = %q, want [vdso]", regions[7].Module)
		}
	})
}

func TestParseMapsLineErrors(t *testing.T) {
	bad := []string{
		"",
		"not-a-maps-line",
		"00400000 r-xp 00000000 08:01 1",
		"zzzz-004b0000 r-xp 00000000 08:01 1",
		"00400000-zzzz r-xp 00000000 08:01 1",
		"004b0000-00400000 r-xp 00000000 08:01 1", // end before start
	}
	for _, line := range bad {
		if _, err := parseMapsLine(line); err == nil {
			t.Errorf("parseMapsLine(%q) succeeded, want error", line)
		}
	}
}

func TestEnumerateLive(t *testing.T) {
	enum, err := NewEnumerator()
	if err != nil {
		t.Fatalf("NewEnumerator: %v", err)
	}

	regions, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	if len(regions) == 0 {
		t.Fatal("no regions enumerated for a running process")
	}

	exec := 0
	for _, r := range regions {
		if r.Executable {
			exec++
		}
	}
	if exec == 0 {
		t.Error("no executable regions found; the test binary must have code pages")
	}
}

func TestReadMemoryLive(t *testing.T) {
	enum, err := NewEnumerator()
	if err != nil {
		t.Fatalf("NewEnumerator: %v", err)
	}
	rd, err := NewReader()
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer rd.Close()

	regions, err := enum.Enumerate()
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}

	var target *Region
	for i, r := range regions {
		if r.Executable && r.Readable && !r.Writable {
			target = &regions[i]
			break
		}
	}
	if target == nil {
		t.Skip("no read-only executable region found")
	}

	buf := make([]byte, 4096)
	n, err := rd.ReadMemory(buf, target.Start)
	if err != nil {
		t.Fatalf("ReadMemory(%s): %v", target.Identity(), err)
	}
	if n != len(buf) {
		t.Errorf("read %d bytes, want %d", n, len(buf))
	}
}

func TestReadMemoryUnmapped(t *testing.T) {
	rd, err := NewReader()
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer rd.Close()

	// The zero page is never mapped in a userspace process.
	buf := make([]byte, 16)
	if _, err := rd.ReadMemory(buf, 0); err == nil {
		t.Error("reading the zero page succeeded, want error")
	}
}
