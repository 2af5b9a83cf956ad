package catalog

import (
	"context"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("SpoonacularSource", func() {
	var (
		server *ghttp.Server
		source *SpoonacularSource
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		var err error
		source, err = NewSpoonacular(SpoonacularOptions{
			BaseURL:           server.URL(),
			APIKey:            "test-key",
			Number:            5,
			RequestsPerSecond: 100,
		}, testNormalizer())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		server.Close()
	})

	It("requires an api key", func() {
		_, err := NewSpoonacular(SpoonacularOptions{}, testNormalizer())
		Expect(err).To(HaveOccurred())
	})

	It("maps the response onto canonical ids", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("GET", "/recipes/findByIngredients"),
			ghttp.VerifyFormKV("ingredients", "milk,eggs"),
			ghttp.VerifyFormKV("number", "5"),
			ghttp.VerifyFormKV("ranking", "2"),
			ghttp.VerifyFormKV("apiKey", "test-key"),
			ghttp.RespondWith(http.StatusOK, `[{
				"id": 42,
				"title": "Pancakes",
				"usedIngredients": [{"name": "milk"}, {"name": "eggs"}],
				"missedIngredients": [{"name": "all purpose flour"}]
			}]`),
		))

		recipes, err := source.FetchCandidates(context.Background(), []string{"milk", "eggs"})
		Expect(err).NotTo(HaveOccurred())
		Expect(recipes).To(HaveLen(1))
		Expect(recipes[0].ID).To(Equal("spoonacular-42"))
		Expect(recipes[0].Required).To(Equal([]string{"milk", "eggs", "flour"}))
		Expect(recipes[0].SourceURL).To(Equal("https://spoonacular.com/recipes/42"))
	})

	It("skips the call for an empty inventory", func() {
		recipes, err := source.FetchCandidates(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(recipes).To(BeEmpty())
		Expect(server.ReceivedRequests()).To(BeEmpty())
	})

	It("returns API errors", func() {
		server.AppendHandlers(ghttp.RespondWith(http.StatusPaymentRequired, "quota exceeded"))
		_, err := source.FetchCandidates(context.Background(), []string{"milk"})
		Expect(err).To(MatchError(ContainSubstring("status 402")))
	})

	It("honors a cancelled context", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := source.FetchCandidates(ctx, []string{"milk"})
		Expect(err).To(MatchError(context.Canceled))
	})
})
