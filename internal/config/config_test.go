package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/pantry/internal/receipt"
)

var _ = Describe("Load", func() {
	var (
		path     string
		settings *Settings
		err      error
	)

	writeConfig := func(body string) {
		path = filepath.Join(GinkgoT().TempDir(), "pantry.yaml")
		Expect(os.WriteFile(path, []byte(body), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		path = ""
	})

	JustBeforeEach(func() {
		settings, err = Load(path)
	})

	It("loads the built-in defaults", func() {
		Expect(err).NotTo(HaveOccurred())
		Expect(settings.Parser.ReviewThreshold).To(Equal(0.6))
		Expect(settings.Parser.MaxQuantity).To(Equal(99))
		Expect(settings.Recommend.Limit).To(Equal(10))
		Expect(settings.Recommend.Staples).To(ContainElement("salt"))
		Expect(settings.ShelfLife.Days).To(HaveKeyWithValue("milk", 3))
		Expect(settings.ShelfLife.FallbackDays).To(Equal(7))
		Expect(settings.Languages).To(HaveLen(2))
		Expect(settings.Dictionary).NotTo(BeEmpty())
	})

	It("builds a working pipeline from the defaults", func() {
		normalizer, err := settings.Normalizer()
		Expect(err).NotTo(HaveOccurred())
		parser, err := settings.ReceiptParser(normalizer)
		Expect(err).NotTo(HaveOccurred())

		res, err := parser.ParseText(`MİGROS TİCARET A.Ş.
TEL: 0216 555 44 33
12.03.2024 14:32
FİŞ NO: 0042
SÜT 1 X 25.90
TEL ŞEHRİYE 5,50
DOMATES 0,850KG x 45,90 = 39,02
TOPLAM 70.42
KDV 5,21
KREDİ KARTI 70,42`)
		Expect(err).NotTo(HaveOccurred())

		var ids []string
		for _, rec := range res.Records {
			ids = append(ids, rec.CanonicalID)
		}
		Expect(ids).To(Equal([]string{"milk", "vermicelli", "tomato"}))
		Expect(res.Summary.NoiseLines).To(Equal(5))
		Expect(res.Summary.TotalMarkerLines).To(Equal(2))
		Expect(res.Records[2].Price).To(Equal(receipt.Cents(3902)))
	})

	It("derives the scorer and the policy", func() {
		Expect(settings.Scorer().MinCoverage).To(Equal(0.25))
		policy := settings.Policy()
		Expect(policy.CoverageWeight).To(Equal(0.7))
		Expect(policy.UrgencyWeight).To(Equal(0.3))
		Expect(policy.UrgencyScaleDays).To(Equal(3.0))
	})

	When("a user file overrides values", func() {
		BeforeEach(func() {
			writeConfig(`
recommend:
  limit: 3
shelf_life:
  fallback_days: 5
`)
		})

		It("merges it over the defaults", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Recommend.Limit).To(Equal(3))
			Expect(settings.Recommend.CoverageWeight).To(Equal(0.7))
			Expect(settings.ShelfLife.FallbackDays).To(Equal(5))
			Expect(settings.ShelfLife.Days).To(HaveKeyWithValue("milk", 3))
		})
	})

	When("the environment overrides a value", func() {
		BeforeEach(func() {
			Expect(os.Setenv("PANTRY_RECOMMEND_LIMIT", "4")).To(Succeed())
			DeferCleanup(os.Unsetenv, "PANTRY_RECOMMEND_LIMIT")
		})

		It("applies it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(settings.Recommend.Limit).To(Equal(4))
		})
	})

	When("a value is out of range", func() {
		BeforeEach(func() {
			writeConfig("parser:\n  review_threshold: 2\nrecommend:\n  urgency_scale_days: 0\n")
		})

		It("fails validation", func() {
			Expect(err).To(MatchError(ContainSubstring("parser.review_threshold")))
			Expect(err).To(MatchError(ContainSubstring("recommend.urgency_scale_days")))
		})
	})

	When("the file does not exist", func() {
		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "missing.yaml")
		})

		It("fails", func() {
			Expect(err).To(MatchError(ContainSubstring("reading config")))
		})
	})
})
