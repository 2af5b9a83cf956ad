package scanning

import (
	"github.com/google/generative-ai-go/genai"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gemini", func() {
	It("requires an API key", func() {
		_, err := NewGemini("", "")
		Expect(err).To(MatchError(ContainSubstring("api key")))
	})

	Describe("candidateText", func() {
		It("joins the text parts of the first candidate", func() {
			resp := &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"lines": `), genai.Text(`["SÜT 25,90"]}`)}},
				}},
			}
			text, err := candidateText(resp)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal(`{"lines": ["SÜT 25,90"]}`))
		})

		It("rejects empty responses", func() {
			_, err := candidateText(&genai.GenerateContentResponse{})
			Expect(err).To(MatchError(errEmptyGeminiResponse))

			_, err = candidateText(&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}}},
			})
			Expect(err).To(MatchError(errEmptyGeminiResponse))
		})
	})
})
