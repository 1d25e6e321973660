// Package mmu implements the memory management unit that owns the page
// table, the physical frame allocator, and the TLB, and performs address
// allocation and translation.
package mmu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/policy"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

// ErrOutOfMemory is returned by Allocate when the frame allocator cannot
// satisfy a request.
var ErrOutOfMemory = errors.New("out of physical memory")

// ErrInvalidAddress is returned by Translate when no page-table entry covers
// the address.
var ErrInvalidAddress = errors.New("invalid virtual address")

// Comp is the default MMU implementation.
type Comp struct {
	name string

	pageTable    vm.PageTable
	frames       *vm.FrameAllocator
	tlb          *tlb.TLB
	policyEngine policy.Engine

	smallPageSize uint64
	largePageSize uint64

	internalFragmentation uint64
}

// Name returns the name of the MMU.
func (c *Comp) Name() string {
	return c.name
}

// Allocate backs the virtual address range [vAddr, vAddr+size-1] with
// physical frames. The page size is chosen by the policy engine, and every
// virtual page spanned by the range that is not yet in the page table gets
// its own, independently placed run of frames.
//
// The internal fragmentation of the request, spanned pages times page size
// minus the request size, is charged per request, even when the spanned
// pages already exist.
//
// On ErrOutOfMemory, pages mapped earlier in the same request stay
// committed; there is no rollback. An existing entry is never resized, so
// the behavior of re-allocating a range under a different page size is
// undefined.
func (c *Comp) Allocate(vAddr, size uint64) error {
	if size == 0 {
		return nil
	}

	pageSize := c.policyEngine.DecidePageSize(size)
	firstVPN := vAddr / pageSize
	lastVPN := (vAddr + size - 1) / pageSize
	numPages := lastVPN - firstVPN + 1

	c.internalFragmentation += numPages*pageSize - size

	framesPerPage := pageSize / c.smallPageSize
	for vpn := firstVPN; vpn <= lastVPN; vpn++ {
		if _, found := c.pageTable.Find(vpn); found {
			continue
		}

		frame := c.frames.Allocate(framesPerPage)
		if !frame.Valid() {
			return fmt.Errorf("allocating %d bytes at 0x%x: %w",
				size, vAddr, ErrOutOfMemory)
		}

		c.pageTable.Insert(vm.Page{
			VPN:      vpn,
			Frame:    frame,
			PageSize: pageSize,
		})
	}

	return nil
}

// Translate resolves the virtual address to the physical frame backing it.
// The large-page VPN is probed first, then the small-page VPN; a page-table
// hit counts only if the entry's recorded page size matches the granularity
// that produced the VPN. The TLB is queried with the resolved VPN and filled
// from the page table on a miss.
func (c *Comp) Translate(vAddr uint64) (vm.Frame, error) {
	page, found := c.resolvePage(vAddr)
	if !found {
		return vm.InvalidFrame, fmt.Errorf("translating 0x%x: %w",
			vAddr, ErrInvalidAddress)
	}

	if frame, hit := c.tlb.Lookup(page.VPN); hit {
		return frame, nil
	}

	c.tlb.Insert(page.VPN, page.Frame)

	return page.Frame, nil
}

func (c *Comp) resolvePage(vAddr uint64) (vm.Page, bool) {
	largeVPN := vAddr / c.largePageSize
	if page, found := c.pageTable.Find(largeVPN); found &&
		page.PageSize == c.largePageSize {
		return page, true
	}

	smallVPN := vAddr / c.smallPageSize
	if page, found := c.pageTable.Find(smallVPN); found &&
		page.PageSize == c.smallPageSize {
		return page, true
	}

	return vm.Page{}, false
}

// TLBHitRate returns the integer percentage of TLB lookups that hit.
func (c *Comp) TLBHitRate() int {
	return c.tlb.HitRate()
}

// TLBHits returns the number of TLB lookups that hit.
func (c *Comp) TLBHits() uint64 {
	return c.tlb.Hits()
}

// TLBMisses returns the number of TLB lookups that missed.
func (c *Comp) TLBMisses() uint64 {
	return c.tlb.Misses()
}

// InternalFragmentation returns the cumulative bytes wasted by rounding
// requests up to whole pages.
func (c *Comp) InternalFragmentation() uint64 {
	return c.internalFragmentation
}

// PageTableEntryCount returns the number of entries in the page table.
func (c *Comp) PageTableEntryCount() int {
	return c.pageTable.Count()
}

// NumFrames returns the total number of physical frames.
func (c *Comp) NumFrames() uint64 {
	return c.frames.NumFrames()
}

// NumFramesAllocated returns the number of physical frames currently
// allocated.
func (c *Comp) NumFramesAllocated() uint64 {
	return c.frames.NumAllocated()
}
