package mmu

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/policy"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
)

// A Builder can build MMUs.
type Builder struct {
	policyMode       string
	dynamicThreshold uint64
	smallPageSize    uint64
	largePageSize    uint64
	physicalMemSize  uint64
	tlbCapacity      int
	pageTable        vm.PageTable
}

// MakeBuilder creates a new Builder with default configuration: dynamic
// policy with a 1 MiB threshold, 4 KiB and 2 MiB pages, 1 GiB of physical
// memory, and a 64-entry TLB.
func MakeBuilder() Builder {
	return Builder{
		policyMode:       policy.ModeDynamic,
		dynamicThreshold: 1 * 1024 * 1024,
		smallPageSize:    vm.DefaultSmallPageSize,
		largePageSize:    vm.DefaultLargePageSize,
		physicalMemSize:  vm.DefaultPhysicalMemSize,
		tlbCapacity:      64,
	}
}

// WithPolicyMode sets the page-size policy mode ("small", "large", or
// "dynamic"). An unrecognized mode degrades to the small page size.
func (b Builder) WithPolicyMode(mode string) Builder {
	b.policyMode = mode
	return b
}

// WithDynamicThreshold sets the request size in bytes above which the
// dynamic policy picks the large page size.
func (b Builder) WithDynamicThreshold(bytes uint64) Builder {
	b.dynamicThreshold = bytes
	return b
}

// WithSmallPageSize sets the small page size. The small page size is also
// the physical frame size.
func (b Builder) WithSmallPageSize(n uint64) Builder {
	b.smallPageSize = n
	return b
}

// WithLargePageSize sets the large page size. It must be a multiple of the
// small page size.
func (b Builder) WithLargePageSize(n uint64) Builder {
	b.largePageSize = n
	return b
}

// WithPhysicalMemSize sets the size of the physical memory space in bytes.
func (b Builder) WithPhysicalMemSize(n uint64) Builder {
	b.physicalMemSize = n
	return b
}

// WithTLBCapacity sets the number of entries in the TLB.
func (b Builder) WithTLBCapacity(n int) Builder {
	b.tlbCapacity = n
	return b
}

// WithPageTable sets the page table that the MMU uses.
func (b Builder) WithPageTable(pageTable vm.PageTable) Builder {
	b.pageTable = pageTable
	return b
}

// Build returns a newly created MMU.
func (b Builder) Build(name string) *Comp {
	b.mustBeValid()

	mmu := &Comp{
		name:          name,
		smallPageSize: b.smallPageSize,
		largePageSize: b.largePageSize,
	}

	mmu.pageTable = b.pageTable
	if mmu.pageTable == nil {
		mmu.pageTable = vm.NewPageTable()
	}

	mmu.frames = vm.NewFrameAllocator(b.physicalMemSize / b.smallPageSize)

	mmu.tlb = tlb.MakeBuilder().
		WithCapacity(b.tlbCapacity).
		Build(name + ".TLB")

	mmu.policyEngine = policy.MakeEngine().
		WithMode(b.policyMode).
		WithThreshold(b.dynamicThreshold).
		WithPageSizes(b.smallPageSize, b.largePageSize)

	return mmu
}

func (b Builder) mustBeValid() {
	if b.smallPageSize == 0 || (b.smallPageSize&(b.smallPageSize-1)) != 0 {
		panic("small page size must be a power of 2")
	}

	if b.largePageSize == 0 || b.largePageSize%b.smallPageSize != 0 {
		panic("large page size must be a multiple of the small page size")
	}

	if b.physicalMemSize == 0 || b.physicalMemSize%b.smallPageSize != 0 {
		panic("physical memory size must be a multiple of the small page size")
	}
}
