// Package vm provides the data structures for modeling virtual memory,
// including pages, page tables, and physical frame bookkeeping.
package vm

import "math"

// Default simulation constants. Small pages are 4 KiB, large pages are 2 MiB,
// and the physical memory space is 1 GiB.
const (
	DefaultSmallPageSize   uint64 = 4 * 1024
	DefaultLargePageSize   uint64 = 2 * 1024 * 1024
	DefaultPhysicalMemSize uint64 = 1 * 1024 * 1024 * 1024
)

// A Frame is the index of a physical memory frame. Frames are small-page
// sized, so a large page occupies a contiguous run of frames.
type Frame uint64

// InvalidFrame is returned by the frame allocator when it fails to reserve
// the requested frames.
const InvalidFrame = Frame(math.MaxUint64)

// Valid returns true if this is a valid frame.
func (f Frame) Valid() bool {
	return f != InvalidFrame
}

// A Page is an entry in the page table, maintaining the information about how
// to translate a virtual page into a physical frame.
//
// The VPN is the virtual address divided by the page size. Its numeric
// meaning therefore depends on the page size that produced it, and entries
// computed with different page sizes coexist in one table. Once created, a
// page's size never changes.
type Page struct {
	VPN      uint64
	Frame    Frame
	PageSize uint64
}
