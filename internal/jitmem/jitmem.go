// Package jitmem allocates writable-then-executable memory for freshly
// compiled Befunge-93 basic blocks.
/*
jitmem follows the usual map-mut-then-make-exec protocol: a Region starts
out writable only, the compiler copies raw machine code bytes into it, and
Freeze() then flips the page to executable and read-only. No page is ever
both writable and executable at once, so the allocator stays usable on a
kernel enforcing W^X.

golang.org/x/sys/unix is used instead of syscall directly: it is the
maintained home of the mmap/mprotect surface, and jitmem is the package
that has to care about flag spellings the frozen syscall package does not
track uniformly across platforms.
*/
package jitmem

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region is one page-aligned slice of memory holding a single compiled
// block's machine code. It starts out writable and becomes executable
// exactly once, via Freeze.
type Region struct {
	mem    []byte
	frozen bool
}

// Alloc reserves a private, anonymous, page-aligned region at least size
// bytes long, mapped read/write (never executable until Freeze).
func Alloc(size int) (*Region, error) {
	if size <= 0 {
		size = 1
	}
	mem, err := unix.Mmap(-1, 0, pageRound(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("jitmem: mmap: %w", err)
	}
	return &Region{mem: mem}, nil
}

// Write copies code into the region starting at offset 0. It must be called
// before Freeze.
func (r *Region) Write(code []byte) error {
	if r.frozen {
		return fmt.Errorf("jitmem: write into frozen region")
	}
	if len(code) > len(r.mem) {
		return fmt.Errorf("jitmem: code length %d exceeds region size %d", len(code), len(r.mem))
	}
	copy(r.mem, code)
	return nil
}

// Freeze makes the region executable and read-only. After Freeze, Write is
// no longer permitted; Entry is.
func (r *Region) Freeze() error {
	if r.frozen {
		return nil
	}
	if err := unix.Mprotect(r.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("jitmem: mprotect exec: %w", err)
	}
	r.frozen = true
	return nil
}

// Entry returns the address of the first byte of the region, the value a
// compiled block's jump target and the dispatch loop's function-pointer
// call both use. Calling Entry before Freeze is a programming error: the
// region is not yet executable.
func (r *Region) Entry() uintptr {
	return uintptr(unsafe.Pointer(&r.mem[0]))
}

// Free releases the underlying mapping. Once freed, Entry is invalid and
// must never be called or jumped to again.
func (r *Region) Free() error {
	if r.mem == nil {
		return nil
	}
	err := unix.Munmap(r.mem)
	r.mem = nil
	if err != nil {
		return fmt.Errorf("jitmem: munmap: %w", err)
	}
	return nil
}

// pageRound rounds n up to the next multiple of the system page size.
func pageRound(n int) int {
	pageSize := unix.Getpagesize()
	if n%pageSize == 0 {
		return n
	}
	return (n/pageSize + 1) * pageSize
}
