package scanning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiTimeout      = 60 * time.Second
)

// errEmptyGeminiResponse is returned when Gemini answers without text.
var errEmptyGeminiResponse = errors.New("gemini returned no text")

// Gemini reads receipt lines with Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a Gemini LineReader. Temperature is pinned to zero so
// repeated scans of one receipt transcribe the same way.
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text("You are an OCR engine. Transcribe printed receipts exactly.")},
	}

	return &Gemini{client: client, model: model}, nil
}

// ReadLines transcribes a receipt into its printed lines
func (g *Gemini) ReadLines(ctx context.Context, data []byte, contentType string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, geminiTimeout)
	defer cancel()

	png, _, _, err := prepareImageData(data, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := g.model.GenerateContent(ctx, genai.ImageData("png", png), genai.Text(receiptLinesPrompt))
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	text, err := candidateText(resp)
	if err != nil {
		return nil, err
	}

	lines, err := parseLinesJSON(text)
	if err != nil {
		return nil, fmt.Errorf("parsing receipt lines: %w", err)
	}
	return lines, nil
}

// candidateText joins the text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errEmptyGeminiResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	if b.Len() == 0 {
		return "", errEmptyGeminiResponse
	}
	return b.String(), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
