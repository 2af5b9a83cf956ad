package scanning

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	"image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"
)

const (
	mimePDF = "application/pdf"
	mimePNG = "image/png"

	// pdfDPI is the resolution receipts in PDF form are rendered at.
	pdfDPI = 300
	// minOCRWidth is the width below which photos are upscaled before local
	// OCR. Thermal print is small and Tesseract misreads it at low DPI.
	minOCRWidth = 1200
)

// heicBrands are the ftyp brands of HEIC/HEIF files from phone cameras.
var heicBrands = map[string]bool{"heic": true, "heix": true, "heif": true, "mif1": true, "msf1": true}

// isHEIC sniffs the ftyp box at offset 4 and falls back to the MIME type.
func isHEIC(data []byte, mimeType string) bool {
	if len(data) >= 12 && string(data[4:8]) == "ftyp" && heicBrands[string(data[8:12])] {
		return true
	}
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

// decodeDocument decodes the first page of a receipt into an image.
func decodeDocument(data []byte, mimeType string) (image.Image, error) {
	switch {
	case mimeType == mimePDF:
		doc, err := fitz.NewFromMemory(data)
		if err != nil {
			return nil, fmt.Errorf("opening PDF: %w", err)
		}
		defer doc.Close()

		img, err := doc.ImageDPI(0, pdfDPI)
		if err != nil {
			return nil, fmt.Errorf("rendering PDF page: %w", err)
		}
		return img, nil
	case isHEIC(data, mimeType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding image (supported: JPEG, PNG, GIF, HEIC, HEIF, PDF): %w", err)
		}
		return img, nil
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// prepareImageData normalizes the MIME type and converts the document to PNG
// if needed. It returns the PNG data, its MIME type and whether a conversion
// happened.
func prepareImageData(data []byte, contentType string) ([]byte, string, bool, error) {
	mimeType := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	if mimeType == mimePNG && !isHEIC(data, mimeType) {
		return data, mimePNG, false, nil
	}

	img, err := decodeDocument(data, mimeType)
	if err != nil {
		return nil, "", false, err
	}
	pngData, err := encodePNG(img)
	if err != nil {
		return nil, "", false, err
	}
	return pngData, mimePNG, true, nil
}

// preprocessForOCR prepares a PNG for local OCR: an upscale for narrow
// images, grayscale, stronger contrast and a light sharpen.
func preprocessForOCR(pngData []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(pngData), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	if w := img.Bounds().Dx(); w > 0 && w < minOCRWidth {
		img = imaging.Resize(img, minOCRWidth, 0, imaging.Lanczos)
	}
	out := imaging.Sharpen(imaging.AdjustContrast(imaging.Grayscale(img), 30), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}
