package vm

import "sync"

// A PageTable holds a collection of pages, keyed by virtual page number.
//
// The table is keyed by VPN rather than by virtual address because the VPN
// key space mixes granularities: a large-page VPN can numerically coincide
// with an unrelated small-page VPN. Callers disambiguate by checking the
// PageSize recorded on the returned page.
type PageTable interface {
	Insert(page Page)
	Find(vpn uint64) (Page, bool)
	Count() int
}

// NewPageTable creates a new PageTable.
func NewPageTable() PageTable {
	return &pageTableImpl{
		entries: make(map[uint64]Page),
	}
}

// pageTableImpl is the default implementation of a PageTable.
type pageTableImpl struct {
	sync.Mutex
	entries map[uint64]Page
}

// Insert puts a new page into the PageTable, overwriting any existing entry
// with the same VPN.
func (pt *pageTableImpl) Insert(page Page) {
	pt.Lock()
	defer pt.Unlock()

	pt.entries[page.VPN] = page
}

// Find returns the page registered under the given VPN. The bool return
// value indicates if the page is found or not.
func (pt *pageTableImpl) Find(vpn uint64) (Page, bool) {
	pt.Lock()
	defer pt.Unlock()

	page, found := pt.entries[vpn]
	return page, found
}

// Count returns the number of entries in the table.
func (pt *pageTableImpl) Count() int {
	pt.Lock()
	defer pt.Unlock()

	return len(pt.entries)
}
