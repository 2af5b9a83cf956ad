package receipt

import (
	"regexp"
	"unicode"
	"unicode/utf8"
)

// priceRe matches an amount with a decimal separator, optionally with a
// currency symbol before it or a TL/₺ suffix after it. Group 1 is the number.
var priceRe = regexp.MustCompile(`(?:[₺$€£]\s?)?(\d{1,3}(?:[.,]\d{3})+[.,]\d{2}|\d+[.,]\d{1,2})(?:\s?(?:TL|₺))?`)

// priceMatch is one price token found on a line.
type priceMatch struct {
	start, end int // span of the whole token in the line
	number     string
	negative   bool // printed with a leading minus, as on void and refund lines
}

// findPrices returns every price token on text, left to right. A candidate
// glued to a following digit ("0,850") or a preceding letter other than a
// quantity marker is not a price.
func findPrices(text string) []priceMatch {
	var out []priceMatch
	for _, loc := range priceRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := loc[0], loc[1]
		if r, _ := utf8.DecodeRuneInString(text[end:]); end < len(text) && unicode.IsDigit(r) {
			continue
		}
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(text[:start])
			if unicode.IsDigit(r) || (unicode.IsLetter(r) && r != 'x' && r != 'X') {
				continue
			}
		}
		m := priceMatch{start: start, end: end, number: text[loc[2]:loc[3]]}
		if start > 0 {
			r, size := utf8.DecodeLastRuneInString(text[:start])
			if r == '-' || r == '−' {
				m.negative = true
				m.start -= size
			}
		}
		out = append(out, m)
	}
	return out
}

// hasPrice reports whether text contains at least one price token.
func hasPrice(text string) bool {
	return len(findPrices(text)) > 0
}
