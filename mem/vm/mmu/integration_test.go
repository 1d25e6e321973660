package mmu

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/policy"
)

var _ = Describe("MMU integration", func() {
	It("should run the small-policy example end to end", func() {
		mmu := MakeBuilder().
			WithPolicyMode(policy.ModeSmall).
			Build("MMU")

		Expect(mmu.Allocate(0x1000, 8192)).To(Succeed())
		Expect(mmu.PageTableEntryCount()).To(Equal(2))
		Expect(mmu.InternalFragmentation()).To(Equal(uint64(0)))

		Expect(mmu.Allocate(0x1000, 5000)).To(Succeed())
		Expect(mmu.PageTableEntryCount()).To(Equal(2))
		Expect(mmu.InternalFragmentation()).To(Equal(uint64(3192)))

		frame1, err := mmu.Translate(0x1000)
		Expect(err).ToNot(HaveOccurred())

		frame2, err := mmu.Translate(0x1000)
		Expect(err).ToNot(HaveOccurred())

		Expect(frame2).To(Equal(frame1))
		Expect(mmu.TLBHitRate()).To(Equal(50))
	})

	It("should translate every address in a request to the frame "+
		"recorded for its page", func() {
		mmu := MakeBuilder().
			WithPolicyMode(policy.ModeSmall).
			Build("MMU")

		Expect(mmu.Allocate(0x4000, 4*4096)).To(Succeed())

		frames := make(map[vm.Frame]bool)
		for offset := uint64(0); offset < 4*4096; offset += 4096 {
			frame, err := mmu.Translate(0x4000 + offset)
			Expect(err).ToNot(HaveOccurred())
			Expect(frame.Valid()).To(BeTrue())
			frames[frame] = true
		}

		// Each small page is backed by its own frame.
		Expect(frames).To(HaveLen(4))
	})

	It("should serve large and small pages from one table", func() {
		mmu := MakeBuilder().
			WithPolicyMode(policy.ModeDynamic).
			WithDynamicThreshold(1 * 1024 * 1024).
			Build("MMU")

		// Above threshold: backed by one 2 MiB page.
		Expect(mmu.Allocate(0x400000, 2*1024*1024)).To(Succeed())
		// Below threshold: backed by small pages elsewhere.
		Expect(mmu.Allocate(0x10000000, 8192)).To(Succeed())

		largeFrame, err := mmu.Translate(0x400000 + 12345)
		Expect(err).ToNot(HaveOccurred())

		smallFrame, err := mmu.Translate(0x10000000)
		Expect(err).ToNot(HaveOccurred())

		Expect(largeFrame).ToNot(Equal(smallFrame))
		Expect(mmu.PageTableEntryCount()).To(Equal(3))
	})

	It("should fail allocation beyond physical capacity and keep "+
		"prior entries", func() {
		mmu := MakeBuilder().
			WithPolicyMode(policy.ModeSmall).
			WithPhysicalMemSize(4 * 4096).
			Build("MMU")

		Expect(mmu.Allocate(0, 4*4096)).To(Succeed())

		err := mmu.Allocate(0x100000, 4096)
		Expect(errors.Is(err, ErrOutOfMemory)).To(BeTrue())

		Expect(mmu.PageTableEntryCount()).To(Equal(4))

		_, err = mmu.Translate(0)
		Expect(err).ToNot(HaveOccurred())
	})

	It("should accumulate fragmentation over requests", func() {
		mmu := MakeBuilder().
			WithPolicyMode(policy.ModeSmall).
			Build("MMU")

		Expect(mmu.Allocate(0, 100)).To(Succeed())
		Expect(mmu.InternalFragmentation()).To(Equal(uint64(4096 - 100)))

		Expect(mmu.Allocate(0x10000, 4097)).To(Succeed())
		Expect(mmu.InternalFragmentation()).
			To(Equal(uint64(4096 - 100 + 8192 - 4097)))
	})
})
