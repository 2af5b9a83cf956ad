package scanning

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "llava"
	ollamaTimeout      = 120 * time.Second // vision models are slow on CPU
)

// Ollama reads receipt lines with a local Ollama vision model. Models with
// decent OCR (qwen2-vl, llava:1.6) give the best transcriptions.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama creates an Ollama LineReader
func NewOllama(baseURL string, modelName string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if modelName == "" {
		modelName = defaultOllamaModel
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   modelName,
		client:  &http.Client{Timeout: ollamaTimeout},
	}, nil
}

// ollamaGenerateRequest is the body of POST /api/generate
type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Images  []string       `json:"images"`
	Format  string         `json:"format,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// ReadLines transcribes a receipt into its printed lines
func (o *Ollama) ReadLines(ctx context.Context, data []byte, contentType string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaTimeout)
	defer cancel()

	png, _, _, err := prepareImageData(data, contentType)
	if err != nil {
		return nil, err
	}

	out, err := o.generate(ctx, ollamaGenerateRequest{
		Model:   o.model,
		System:  "You are an OCR engine. Transcribe printed receipts exactly.",
		Prompt:  receiptLinesPrompt,
		Images:  []string{base64.StdEncoding.EncodeToString(png)},
		Format:  "json",
		Options: map[string]any{"temperature": 0},
	})
	if err != nil {
		return nil, err
	}

	lines, err := parseLinesJSON(out.Response)
	if err != nil {
		return nil, fmt.Errorf("parsing receipt lines: %w", err)
	}
	return lines, nil
}

func (o *Ollama) generate(ctx context.Context, body ollamaGenerateRequest) (*ollamaGenerateResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ollamaGenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding ollama response: %w", err)
	}
	return &out, nil
}

// Close is a no-op; the HTTP client holds no resources
func (o *Ollama) Close() error {
	return nil
}
