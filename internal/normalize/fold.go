// Package normalize turns noisy OCR product names into canonical product
// identifiers.
//
// Matching works on folded text: case-folded, diacritics removed and
// punctuation collapsed, so "SÜT", "Sut" and "S.U.T" all compare equal. A
// Dictionary maps folded spelling variants, OCR typos and cross-language
// synonyms to canonical ids. The Normalizer never rejects input: when nothing
// matches it still returns a readable name with a low confidence.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// unitTokens are quantity/packaging markers that carry no product identity.
var unitTokens = map[string]bool{
	"kg": true, "gr": true, "gram": true, "lt": true, "ml": true, "cl": true,
	"adet": true, "adt": true, "ad": true, "li": true, "lu": true, "pk": true,
	"pcs": true, "pc": true, "pack": true, "paket": true, "oz": true, "lb": true,
}

// ocrDigits are digits the recognizer commonly produces in place of letters.
var ocrDigits = map[rune]rune{'0': 'o', '1': 'i', '5': 's', '8': 'b'}

// Fold case-folds s, strips diacritics and replaces every rune that is not a
// letter or digit with a space. Runs of whitespace collapse to one space.
func Fold(s string) string {
	s = cases.Fold().String(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(t, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == 'ı':
			b.WriteRune('i')
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanName folds a product name and removes tokens that describe quantity
// rather than identity: bare numbers, number+unit pairs like "850kg", unit
// words and single letters. Digits embedded in words are read back as the
// letters OCR usually confuses them with.
func CleanName(s string) string {
	tokens := strings.Fields(Fold(s))
	kept := tokens[:0]
	for _, tok := range tokens {
		if isNumber(tok) || isMeasure(tok) || unitTokens[tok] {
			continue
		}
		tok = fixDigits(tok)
		if len([]rune(tok)) < 2 {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

func isNumber(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return tok != ""
}

// isMeasure reports whether tok is digits followed by a unit, e.g. "500g".
func isMeasure(tok string) bool {
	i := strings.IndexFunc(tok, func(r rune) bool { return !unicode.IsDigit(r) })
	if i <= 0 {
		return false
	}
	unit := tok[i:]
	return unitTokens[unit] || unit == "g" || unit == "l" || unit == "x"
}

func fixDigits(tok string) string {
	hasLetter := strings.IndexFunc(tok, unicode.IsLetter) >= 0
	if !hasLetter {
		return tok
	}
	return strings.Map(func(r rune) rune {
		if fixed, ok := ocrDigits[r]; ok {
			return fixed
		}
		return r
	}, tok)
}
