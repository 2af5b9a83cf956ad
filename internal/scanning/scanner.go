// Package scanning turns receipt photos and PDFs into OCR text lines.
package scanning

import (
	"context"
	"errors"
)

// ErrNoText is returned when a reader recognizes no text at all.
var ErrNoText = errors.New("no text recognized")

// LineReader transcribes a receipt image or PDF into its printed lines, top
// to bottom.
type LineReader interface {
	// ReadLines returns the text lines of the document in data
	ReadLines(ctx context.Context, data []byte, contentType string) ([]string, error)
	// Close releases the reader's resources
	Close() error
}

// receiptLinesPrompt is the shared prompt used by all LLM providers for
// transcribing receipts
const receiptLinesPrompt = `You are transcribing a printed retail receipt. The receipt may be in Turkish or English.

Copy every printed line of the receipt exactly as it appears, from top to bottom:
- Keep the original spelling, letters with diacritics (Ç, Ğ, İ, Ö, Ş, Ü), numbers, separators and currency markers.
- Keep one receipt line per array element; do not merge or split lines.
- Do not translate, correct, summarize or reorder anything.
- Include header, footer, total and payment lines too.

Return ONLY valid JSON in this exact format:
{
  "lines": ["first line", "second line"]
}

Do not include any text before or after the JSON and do not use markdown code blocks.`
