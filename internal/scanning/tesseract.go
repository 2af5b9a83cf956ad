//go:build cgo

package scanning

import (
	"context"
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// DefaultTesseractLanguages covers Turkish and English receipts.
var DefaultTesseractLanguages = []string{"tur", "eng"}

// Tesseract implements the LineReader interface with a local Tesseract
// engine. One engine instance serves all calls, one page at a time.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a Tesseract LineReader for the given language codes.
func NewTesseract(languages ...string) (*Tesseract, error) {
	if len(languages) == 0 {
		languages = DefaultTesseractLanguages
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting tesseract languages: %w", err)
	}
	// Receipts are a single column of text.
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_COLUMN); err != nil {
		client.Close()
		return nil, fmt.Errorf("setting page segmentation mode: %w", err)
	}

	return &Tesseract{client: client}, nil
}

// ReadLines recognizes the printed lines of a receipt
func (t *Tesseract) ReadLines(ctx context.Context, data []byte, contentType string) ([]string, error) {
	pngData, _, _, err := prepareImageData(data, contentType)
	if err != nil {
		return nil, err
	}
	pngData, err = preprocessForOCR(pngData)
	if err != nil {
		return nil, fmt.Errorf("preprocessing image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("setting image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return nil, fmt.Errorf("recognizing text: %w", err)
	}

	lines := cleanLines(splitLines(text))
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}

// Close releases the Tesseract engine
func (t *Tesseract) Close() error {
	return t.client.Close()
}
