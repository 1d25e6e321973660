package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
)

// A Builder can build TLBs.
type Builder struct {
	capacity int
}

// MakeBuilder returns a Builder with default configuration.
func MakeBuilder() Builder {
	return Builder{
		capacity: 64,
	}
}

// WithCapacity sets the number of entries the TLB can hold.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// Build creates a new TLB.
func (b Builder) Build(name string) *TLB {
	if b.capacity <= 0 {
		panic("tlb capacity must be positive")
	}

	return &TLB{
		name:     name,
		capacity: b.capacity,
		entries:  internal.NewOrderedCache[uint64, vm.Frame](),
	}
}
