package vm

import "sync"

// A FrameAllocator hands out physical frames, tracking which frames of the
// physical memory space are occupied. Allocation is first-fit: a request for
// more than one frame is satisfied with the leftmost contiguous run of free
// frames found in a single scan. There is no free path and no compaction.
type FrameAllocator struct {
	sync.Mutex
	frames       []bool
	numAllocated uint64
}

// NewFrameAllocator creates a FrameAllocator managing numFrames frames, all
// initially free.
func NewFrameAllocator(numFrames uint64) *FrameAllocator {
	return &FrameAllocator{
		frames: make([]bool, numFrames),
	}
}

// Allocate reserves numFrames contiguous frames and returns the first frame
// of the run. It returns InvalidFrame if no sufficiently large run of free
// frames exists.
func (a *FrameAllocator) Allocate(numFrames uint64) Frame {
	if numFrames == 0 {
		return InvalidFrame
	}

	a.Lock()
	defer a.Unlock()

	if numFrames == 1 {
		return a.allocateSingle()
	}

	return a.allocateContiguous(numFrames)
}

func (a *FrameAllocator) allocateSingle() Frame {
	for i, allocated := range a.frames {
		if !allocated {
			a.frames[i] = true
			a.numAllocated++
			return Frame(i)
		}
	}

	return InvalidFrame
}

func (a *FrameAllocator) allocateContiguous(numFrames uint64) Frame {
	runLength := uint64(0)
	runStart := 0

	for i, allocated := range a.frames {
		if allocated {
			runLength = 0
			continue
		}

		if runLength == 0 {
			runStart = i
		}
		runLength++

		if runLength == numFrames {
			for j := runStart; j <= i; j++ {
				a.frames[j] = true
			}
			a.numAllocated += numFrames
			return Frame(runStart)
		}
	}

	return InvalidFrame
}

// NumFrames returns the total number of frames managed by the allocator.
func (a *FrameAllocator) NumFrames() uint64 {
	return uint64(len(a.frames))
}

// NumAllocated returns the number of frames currently allocated.
func (a *FrameAllocator) NumAllocated() uint64 {
	a.Lock()
	defer a.Unlock()

	return a.numAllocated
}

// IsAllocated returns whether the given frame is currently allocated.
func (a *FrameAllocator) IsAllocated(frame Frame) bool {
	a.Lock()
	defer a.Unlock()

	return a.frames[frame]
}
