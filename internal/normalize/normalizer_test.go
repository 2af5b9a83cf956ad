package normalize_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry/internal/normalize"
)

var _ = Describe("Dictionary", func() {
	It("rejects entries without an id", func() {
		_, err := normalize.NewDictionary([]normalize.Entry{{Variants: []string{"SÜT"}}})
		Expect(err).To(HaveOccurred())
	})

	It("rejects a key shared by two ids", func() {
		_, err := normalize.NewDictionary([]normalize.Entry{
			{ID: "milk", Variants: []string{"SÜT"}},
			{ID: "dairy", Variants: []string{"SUT"}},
		})
		Expect(err).To(MatchError(ContainSubstring(`"sut"`)))
	})

	It("indexes ids, names and variants", func() {
		dict := testDictionary()
		for _, key := range []string{"milk", "sut", "yumurta", "tel sehriye", "un"} {
			_, ok := dict.Exact(key)
			Expect(ok).To(BeTrue(), key)
		}
	})

	It("uses the English name for display", func() {
		Expect(testDictionary().DisplayName("eggs")).To(Equal("Eggs"))
	})
})

var _ = Describe("Normalizer", func() {
	var (
		normalizer *normalize.Normalizer
		raw        string
		res        normalize.Result
	)

	BeforeEach(func() {
		normalizer = normalize.New(testDictionary(), normalize.DefaultOptions())
	})

	JustBeforeEach(func() {
		res = normalizer.Normalize(raw)
	})

	When("the name is an exact variant", func() {
		BeforeEach(func() {
			raw = "SÜT"
		})

		It("assigns the canonical id", func() {
			Expect(res.CanonicalID).To(Equal("milk"))
		})

		It("has full confidence", func() {
			Expect(res.Confidence).To(Equal(1.0))
			Expect(res.Method).To(Equal(normalize.MethodExact))
		})

		It("shows the English name", func() {
			Expect(res.DisplayName).To(Equal("Milk"))
		})
	})

	When("the name carries OCR noise", func() {
		BeforeEach(func() {
			raw = "PEYNLR"
		})

		It("matches approximately", func() {
			Expect(res.CanonicalID).To(Equal("cheese"))
			Expect(res.Method).To(Equal(normalize.MethodApproximate))
		})

		It("scales confidence below an exact match", func() {
			Expect(res.Confidence).To(BeNumerically("<", 1.0))
			Expect(res.Confidence).To(BeNumerically(">=", 0.72*0.95))
		})
	})

	When("the name contains a known product word", func() {
		BeforeEach(func() {
			raw = "Mİ YUMURTA 15 LI"
		})

		It("matches by token overlap", func() {
			Expect(res.CanonicalID).To(Equal("eggs"))
		})
	})

	When("the name is garbled", func() {
		BeforeEach(func() {
			raw = "XQZT WRKL"
		})

		It("leaves the canonical id empty", func() {
			Expect(res.Matched()).To(BeFalse())
		})

		It("caps the confidence", func() {
			Expect(res.Confidence).To(BeNumerically("<=", 0.3))
		})

		It("still returns a readable name", func() {
			Expect(res.Normalized).To(Equal("xqzt wrkl"))
			Expect(res.DisplayName).To(Equal("Xqzt Wrkl"))
		})
	})

	When("nothing survives cleaning", func() {
		BeforeEach(func() {
			raw = "   "
		})

		It("falls back to a placeholder name", func() {
			Expect(res.Normalized).To(Equal("unknown item"))
			Expect(res.Confidence).To(Equal(0.0))
		})
	})
})
