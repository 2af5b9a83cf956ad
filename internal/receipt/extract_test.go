package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extract", func() {
	DescribeTable("product lines",
		func(text, name string, price Cents, qty int) {
			f, err := Extract(RawLine{Text: text}, DefaultMaxQuantity)
			Expect(err).NotTo(HaveOccurred())
			Expect(f).To(Equal(Fields{Name: name, Price: price, Quantity: qty}))
		},
		Entry("qty x price", "SÜT 1 X 25.90", "SÜT", Cents(2590), 1),
		Entry("qty x price with comma", "EKMEK 2 X 7,50", "EKMEK", Cents(750), 2),
		Entry("glued multiplier", "YOĞURT 3X 15,00", "YOĞURT", Cents(1500), 3),
		Entry("unit price before line price", "PEYNİR 2 X 45,00 90,00", "PEYNİR", Cents(9000), 2),
		Entry("weighed item", "DOMATES 0,850KG x 45,90 = 39,02", "DOMATES", Cents(3902), 1),
		Entry("vat marker and star", "YUMURTA %08 *12,00", "YUMURTA", Cents(1200), 1),
		Entry("bracketed vat marker", "MAKARNA (%08) 14,95", "MAKARNA", Cents(1495), 1),
		Entry("oversized code", "EKMEK 408 x14,95", "EKMEK", Cents(1495), 1),
		Entry("leading quantity", "2 SİMİT 10,00", "SİMİT", Cents(1000), 2),
		Entry("thousands and currency suffix", "ZEYTİNYAĞI 1.249,90 TL", "ZEYTİNYAĞI", Cents(124990), 1),
		Entry("unit marker", "KOLA 1 LT 15,00", "KOLA", Cents(1500), 1),
		Entry("pack size is not a quantity", "YUMURTA 15 Lİ 45,00", "YUMURTA", Cents(4500), 1),
		Entry("quantity in pieces", "LİMON 3 ADET 15,00", "LİMON", Cents(1500), 3),
		Entry("single fraction digit", "SU 5,5", "SU", Cents(550), 1),
		Entry("leading quantity with unit", "2 ADET EKMEK 10,00", "EKMEK", Cents(1000), 2),
		Entry("spaced weight before multiplier", "DOMATES 0,850 KG X 19,90 16,92", "DOMATES", Cents(1692), 1),
	)

	DescribeTable("rejected lines",
		func(text string, expected error) {
			_, err := Extract(RawLine{Text: text}, DefaultMaxQuantity)
			Expect(err).To(MatchError(expected))
		},
		Entry("amount just past the Cents range", "SUT 92233720368547759.00", ErrNoPrice),
		Entry("amount that wraps past int64 in cents", "SUT 184467440737095517.00", ErrNoPrice),
		Entry("void line", "EKMEK -5,00", ErrNegativePrice),
		Entry("void line with unicode minus", "EKMEK −5,00", ErrNegativePrice),
	)

	It("fails without a price", func() {
		_, err := Extract(RawLine{Index: 4, Text: "SÜT 1 X"}, DefaultMaxQuantity)
		Expect(err).To(MatchError(ErrNoPrice))

		var extractErr *ExtractionError
		Expect(err).To(BeAssignableToTypeOf(extractErr))
		Expect(err.Error()).To(ContainSubstring("line 4"))
	})

	It("fails when no name survives", func() {
		_, err := Extract(RawLine{Text: "KG 12,50"}, DefaultMaxQuantity)
		Expect(err).To(MatchError(ErrNoName))
	})

	It("ignores integers above the quantity limit", func() {
		f, err := Extract(RawLine{Text: "SÜT 5 X 25,90"}, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Quantity).To(Equal(1))
		Expect(f.Name).To(Equal("SÜT"))
	})
})
