// Package tlb provides a translation lookaside buffer with LRU replacement.
package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
)

// A TLB is a fixed-capacity cache from virtual page numbers to physical
// frames. It evicts the least-recently-used entry when inserting past
// capacity and counts lookup hits and misses.
type TLB struct {
	name     string
	capacity int
	entries  *internal.OrderedCache[uint64, vm.Frame]

	hits   uint64
	misses uint64
}

// Name returns the name of the TLB.
func (t *TLB) Name() string {
	return t.name
}

// Lookup queries the TLB for the frame cached under the given VPN. A hit
// marks the entry most recently used and returns its frame. A miss returns
// (InvalidFrame, false) and creates no entry; the caller resolves the frame
// from the page table and inserts it explicitly.
func (t *TLB) Lookup(vpn uint64) (vm.Frame, bool) {
	frame, found := t.entries.Get(vpn)
	if !found {
		t.misses++
		return vm.InvalidFrame, false
	}

	t.hits++
	t.entries.Visit(vpn)

	return frame, true
}

// Insert caches a VPN-to-frame mapping as the most recent entry. A stale
// entry for the same VPN is removed first. If the TLB is at capacity, the
// least-recently-used entry is evicted.
func (t *TLB) Insert(vpn uint64, frame vm.Frame) {
	if t.entries.Contains(vpn) {
		t.entries.Erase(vpn)
	} else if t.entries.Size() >= t.capacity {
		lru := t.entries.Order()[0]
		t.entries.Erase(lru)
	}

	t.entries.Insert(vpn, frame)
}

// HitRate returns the integer percentage of lookups that hit. It is 0 when
// no lookups have occurred yet.
func (t *TLB) HitRate() int {
	total := t.hits + t.misses
	if total == 0 {
		return 0
	}

	return int(t.hits * 100 / total)
}

// Hits returns the number of lookups that hit.
func (t *TLB) Hits() uint64 {
	return t.hits
}

// Misses returns the number of lookups that missed.
func (t *TLB) Misses() uint64 {
	return t.misses
}

// Size returns the number of entries currently cached.
func (t *TLB) Size() int {
	return t.entries.Size()
}

// Capacity returns the maximum number of entries the TLB can hold.
func (t *TLB) Capacity() int {
	return t.capacity
}
