package normalize_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry/internal/normalize"
)

var _ = Describe("Similarity", func() {
	It("is 1 for identical strings", func() {
		Expect(normalize.Similarity("peynir", "peynir")).To(Equal(1.0))
	})

	It("scores a one-letter typo highly", func() {
		Expect(normalize.Similarity("peynlr", "peynir")).To(BeNumerically(">=", 0.8))
	})

	It("finds a key contained in a longer name", func() {
		Expect(normalize.Similarity("kasar peyniri", "peynir")).To(BeNumerically("~", 0.9, 1e-9))
	})

	It("does not let a short name cover a longer key", func() {
		Expect(normalize.Similarity("peynir", "kasar peyniri")).To(BeNumerically("<", 0.72))
	})

	It("ignores token overlap for very short keys", func() {
		Expect(normalize.TokenOverlap("un kurabiye", "un")).To(Equal(0.0))
	})

	It("scores unrelated words low", func() {
		Expect(normalize.Similarity("xqzt wrkl", "milk")).To(BeNumerically("<", 0.5))
	})
})
