package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classifier", func() {
	var classifier *Classifier

	BeforeEach(func() {
		classifier = testClassifier()
	})

	DescribeTable("classifying lines",
		func(text string, expected LineClass) {
			Expect(classifier.Classify(RawLine{Text: text})).To(Equal(expected))
		},
		Entry("quantity and price", "SÜT 1 X 25.90", LineProduct),
		Entry("comma decimal", "TEL ŞEHRİYE 5,50", LineProduct),
		Entry("garbled name with a price", "XQZT WRKL 12,50", LineProduct),
		Entry("total keyword", "TOPLAM 143.50", LineTotal),
		Entry("tax keyword", "KDV 12,34", LineTotal),
		Entry("english subtotal", "Subtotal: 20.00", LineTotal),
		Entry("receipt number", "*FİŞ NO: 0042", LineNoise),
		Entry("receipt number without diacritics", "Fis No: 0042", LineNoise),
		Entry("cashier", "KASİYER: AHMET", LineNoise),
		Entry("payment line with an amount", "KREDİ KARTI 143,50", LineNoise),
		Entry("thank-you line", "TEŞEKKÜR EDERİZ", LineNoise),
		Entry("barcode", "8690504012345", LineNoise),
		Entry("date and time", "12/03/2024 14:32", LineNoise),
		Entry("phone header", "TEL: 0212 555 12 12", LineNoise),
		Entry("total keyword without an amount", "TOPLAM", LineUnknown),
		Entry("letters only", "ABC DEF", LineUnknown),
		Entry("price only", "12,50", LineUnknown),
		Entry("blank", "   ", LineUnknown),
	)

	It("rejects an invalid noise pattern", func() {
		_, err := NewClassifier([]LanguageRules{{Language: "tr", NoisePatterns: []string{"("}}})
		Expect(err).To(MatchError(ContainSubstring("compiling tr noise pattern")))
	})
})
