//go:build !cgo

package scanning

import (
	"context"
	"errors"
)

// DefaultTesseractLanguages covers Turkish and English receipts.
var DefaultTesseractLanguages = []string{"tur", "eng"}

// ErrTesseractUnavailable is returned by binaries built without cgo.
var ErrTesseractUnavailable = errors.New("tesseract requires a cgo build")

// Tesseract is unavailable without cgo.
type Tesseract struct{}

// NewTesseract always fails without cgo.
func NewTesseract(languages ...string) (*Tesseract, error) {
	return nil, ErrTesseractUnavailable
}

// ReadLines always fails without cgo.
func (t *Tesseract) ReadLines(ctx context.Context, data []byte, contentType string) ([]string, error) {
	return nil, ErrTesseractUnavailable
}

// Close is a no-op.
func (t *Tesseract) Close() error {
	return nil
}
