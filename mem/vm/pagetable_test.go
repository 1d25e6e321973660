package vm

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PageTable", func() {
	var pt PageTable

	BeforeEach(func() {
		pt = NewPageTable()
	})

	It("should find an inserted page", func() {
		page := Page{VPN: 1, Frame: 7, PageSize: 4096}

		pt.Insert(page)

		found, ok := pt.Find(1)
		Expect(ok).To(BeTrue())
		Expect(found).To(Equal(page))
	})

	It("should not find an absent page", func() {
		_, ok := pt.Find(42)

		Expect(ok).To(BeFalse())
	})

	It("should count entries", func() {
		pt.Insert(Page{VPN: 1, Frame: 0, PageSize: 4096})
		pt.Insert(Page{VPN: 2, Frame: 1, PageSize: 4096})

		Expect(pt.Count()).To(Equal(2))
	})

	It("should overwrite an entry inserted under the same VPN", func() {
		pt.Insert(Page{VPN: 1, Frame: 0, PageSize: 4096})
		pt.Insert(Page{VPN: 1, Frame: 9, PageSize: 4096})

		found, ok := pt.Find(1)
		Expect(ok).To(BeTrue())
		Expect(found.Frame).To(Equal(Frame(9)))
		Expect(pt.Count()).To(Equal(1))
	})
})
