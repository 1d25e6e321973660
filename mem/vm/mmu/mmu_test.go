package mmu

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/policy"
)

var _ = Describe("MMU", func() {
	var (
		mockCtrl  *gomock.Controller
		pageTable *MockPageTable
		mmu       *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		pageTable = NewMockPageTable(mockCtrl)

		mmu = MakeBuilder().
			WithPolicyMode(policy.ModeSmall).
			WithPageTable(pageTable).
			Build("MMU")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("allocate", func() {
		It("should create one entry per spanned page", func() {
			pageTable.EXPECT().Find(uint64(1)).Return(vm.Page{}, false)
			pageTable.EXPECT().Insert(vm.Page{
				VPN:      1,
				Frame:    0,
				PageSize: 4096,
			})
			pageTable.EXPECT().Find(uint64(2)).Return(vm.Page{}, false)
			pageTable.EXPECT().Insert(vm.Page{
				VPN:      2,
				Frame:    1,
				PageSize: 4096,
			})

			err := mmu.Allocate(0x1000, 8192)

			Expect(err).ToNot(HaveOccurred())
			Expect(mmu.InternalFragmentation()).To(Equal(uint64(0)))
		})

		It("should skip pages that already exist", func() {
			existing := vm.Page{VPN: 1, Frame: 3, PageSize: 4096}
			pageTable.EXPECT().Find(uint64(1)).Return(existing, true)
			pageTable.EXPECT().Find(uint64(2)).Return(vm.Page{}, false)
			pageTable.EXPECT().Insert(gomock.Any())

			err := mmu.Allocate(0x1000, 5000)

			Expect(err).ToNot(HaveOccurred())
		})

		It("should charge fragmentation per request, "+
			"even for existing pages", func() {
			existing := vm.Page{VPN: 1, Frame: 3, PageSize: 4096}
			pageTable.EXPECT().Find(uint64(1)).Return(existing, true)
			pageTable.EXPECT().Find(uint64(2)).
				Return(vm.Page{VPN: 2, Frame: 4, PageSize: 4096}, true)

			err := mmu.Allocate(0x1000, 5000)

			Expect(err).ToNot(HaveOccurred())
			Expect(mmu.InternalFragmentation()).To(Equal(uint64(3192)))
		})

		It("should do nothing for a zero-size request", func() {
			err := mmu.Allocate(0x1000, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(mmu.InternalFragmentation()).To(Equal(uint64(0)))
		})
	})

	Context("allocate out of memory", func() {
		BeforeEach(func() {
			mmu = MakeBuilder().
				WithPolicyMode(policy.ModeSmall).
				WithPhysicalMemSize(2 * 4096).
				WithPageTable(pageTable).
				Build("MMU")
		})

		It("should commit earlier pages and stop", func() {
			pageTable.EXPECT().Find(uint64(0)).Return(vm.Page{}, false)
			pageTable.EXPECT().Find(uint64(1)).Return(vm.Page{}, false)
			pageTable.EXPECT().Find(uint64(2)).Return(vm.Page{}, false)
			pageTable.EXPECT().Insert(gomock.Any()).Times(2)

			err := mmu.Allocate(0, 3*4096)

			Expect(errors.Is(err, ErrOutOfMemory)).To(BeTrue())
			Expect(mmu.NumFramesAllocated()).To(Equal(uint64(2)))
		})
	})

	Context("translate", func() {
		It("should use a large page entry first", func() {
			largePage := vm.Page{
				VPN:      0,
				Frame:    5,
				PageSize: vm.DefaultLargePageSize,
			}
			pageTable.EXPECT().Find(uint64(0)).Return(largePage, true)

			frame, err := mmu.Translate(0x1000)

			Expect(err).ToNot(HaveOccurred())
			Expect(frame).To(Equal(vm.Frame(5)))
		})

		It("should fall back to the small page entry when the large "+
			"VPN collides with a small page", func() {
			collidingSmall := vm.Page{VPN: 0, Frame: 9, PageSize: 4096}
			smallPage := vm.Page{VPN: 1, Frame: 2, PageSize: 4096}
			pageTable.EXPECT().Find(uint64(0)).Return(collidingSmall, true)
			pageTable.EXPECT().Find(uint64(1)).Return(smallPage, true)

			frame, err := mmu.Translate(0x1000)

			Expect(err).ToNot(HaveOccurred())
			Expect(frame).To(Equal(vm.Frame(2)))
		})

		It("should fail on an unmapped address", func() {
			pageTable.EXPECT().Find(uint64(0)).Return(vm.Page{}, false)
			pageTable.EXPECT().Find(uint64(1)).Return(vm.Page{}, false)

			_, err := mmu.Translate(0x1000)

			Expect(errors.Is(err, ErrInvalidAddress)).To(BeTrue())
		})

		It("should fill the TLB on a miss and hit afterwards", func() {
			smallPage := vm.Page{VPN: 1, Frame: 2, PageSize: 4096}
			pageTable.EXPECT().Find(uint64(0)).
				Return(vm.Page{}, false).Times(2)
			pageTable.EXPECT().Find(uint64(1)).
				Return(smallPage, true).Times(2)

			frame1, err1 := mmu.Translate(0x1000)
			frame2, err2 := mmu.Translate(0x1000)

			Expect(err1).ToNot(HaveOccurred())
			Expect(err2).ToNot(HaveOccurred())
			Expect(frame1).To(Equal(vm.Frame(2)))
			Expect(frame2).To(Equal(vm.Frame(2)))
			Expect(mmu.TLBMisses()).To(Equal(uint64(1)))
			Expect(mmu.TLBHits()).To(Equal(uint64(1)))
			Expect(mmu.TLBHitRate()).To(Equal(50))
		})
	})

	Context("builder validation", func() {
		It("should reject a non-power-of-2 small page size", func() {
			Expect(func() {
				MakeBuilder().WithSmallPageSize(3000).Build("MMU")
			}).To(Panic())
		})

		It("should reject a large page size that is not a multiple "+
			"of the small page size", func() {
			Expect(func() {
				MakeBuilder().
					WithSmallPageSize(4096).
					WithLargePageSize(4096*2 + 1).
					Build("MMU")
			}).To(Panic())
		})
	})
})
