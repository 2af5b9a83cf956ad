package receipt

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// DefaultMaxQuantity is the largest integer read as a purchase quantity.
// Larger integers in front of a price are product or VAT codes.
const DefaultMaxQuantity = 99

// Fields are the raw values pulled out of one product line.
type Fields struct {
	Name     string
	Price    Cents
	Quantity int
}

var (
	vatRe    = regexp.MustCompile(`^\(?[%#]\d{1,2}\)?$`)
	weightRe = regexp.MustCompile(`(?i)^\d+(?:[.,]\d+)?(?:kg|gr|g|lt|l|ml)$`)
	packRe   = regexp.MustCompile(`(?i)^\d+(?:li|lu|lı|lü|lİ|pk)$`)
	intRe    = regexp.MustCompile(`^\d+$`)
	decRe    = regexp.MustCompile(`^\d+[.,]\d+$`)
	qtyXRe   = regexp.MustCompile(`(?i)^(\d{1,2})[x*]$`)
)

// markers separate a quantity from the price ("2 X 12,50", "2 * 12,50").
var markers = map[string]bool{"X": true, "*": true, "=": true, "@": true, "«": true, "»": true}

var unitMarkers = map[string]bool{
	"KG": true, "ADET": true, "AD": true, "ADT": true,
	"GR": true, "G": true, "LT": true, "L": true, "ML": true,
	"TL": true, "₺": true,
}

var packMarkers = map[string]bool{"LI": true, "LU": true, "LÜ": true, "Lİ": true, "PK": true, "PAKET": true}

// Extract pulls name, price and quantity out of a product line. The price is
// the rightmost price token; quantity defaults to 1.
func Extract(line RawLine, maxQuantity int) (Fields, error) {
	if maxQuantity < 1 {
		maxQuantity = DefaultMaxQuantity
	}
	prices := findPrices(line.Text)
	if len(prices) == 0 {
		return Fields{}, &ExtractionError{Line: line.Index, Text: line.Text, Err: ErrNoPrice}
	}
	last := prices[len(prices)-1]
	if last.negative {
		return Fields{}, &ExtractionError{Line: line.Index, Text: line.Text, Err: ErrNegativePrice}
	}

	price, err := parseCents(last.number)
	if err != nil {
		return Fields{}, &ExtractionError{Line: line.Index, Text: line.Text, Err: ErrNoPrice}
	}

	tokens := strings.Fields(line.Text[:last.start])
	tokens, qty := peelTrailing(tokens, maxQuantity)
	if qty == 0 {
		tokens, qty = peelLeading(tokens, maxQuantity)
	}
	if qty == 0 {
		qty = 1
	}

	name := strings.Join(tokens, " ")
	if !hasAlphaToken(name) {
		return Fields{}, &ExtractionError{Line: line.Index, Text: line.Text, Err: ErrNoName}
	}
	return Fields{Name: name, Price: price, Quantity: qty}, nil
}

// peelTrailing removes quantity, unit price, unit, weight, VAT and code
// tokens from the end of the name span. It returns the quantity it consumed,
// or 0 when none was found.
func peelTrailing(tokens []string, maxQuantity int) ([]string, int) {
	qty := 0
	for len(tokens) > 0 {
		tok := tokens[len(tokens)-1]
		up := strings.ToUpper(tok)

		switch {
		case markers[up]:
			tokens = tokens[:len(tokens)-1]
			if qty == 0 && len(tokens) > 1 {
				if n, ok := smallInt(tokens[len(tokens)-1], maxQuantity); ok {
					qty = n
					tokens = tokens[:len(tokens)-1]
				}
			}
		case qtyXRe.MatchString(tok):
			if n, ok := smallInt(qtyXRe.FindStringSubmatch(tok)[1], maxQuantity); ok && qty == 0 {
				qty = n
			}
			tokens = tokens[:len(tokens)-1]
		case packMarkers[up]:
			tokens = tokens[:len(tokens)-1]
			if len(tokens) > 1 && intRe.MatchString(tokens[len(tokens)-1]) {
				tokens = tokens[:len(tokens)-1]
			}
		case unitMarkers[up]:
			tokens = tokens[:len(tokens)-1]
			// a weight printed apart from its unit ("0,850 KG")
			if len(tokens) > 1 && decRe.MatchString(tokens[len(tokens)-1]) {
				tokens = tokens[:len(tokens)-1]
			}
		case vatRe.MatchString(tok), weightRe.MatchString(tok), packRe.MatchString(tok), isPriceToken(tok):
			tokens = tokens[:len(tokens)-1]
		case intRe.MatchString(tok):
			if n, ok := smallInt(tok, maxQuantity); ok && qty == 0 && len(tokens) > 1 {
				qty = n
			}
			if len(tokens) == 1 {
				return tokens, qty
			}
			tokens = tokens[:len(tokens)-1]
		default:
			return tokens, qty
		}
	}
	return tokens, qty
}

// peelLeading reads a leading "<qty> <name>" or "<qty> ADET <name>" quantity.
func peelLeading(tokens []string, maxQuantity int) ([]string, int) {
	if len(tokens) < 2 {
		return tokens, 0
	}
	n, ok := smallInt(strings.TrimRight(tokens[0], "xX*"), maxQuantity)
	if !ok {
		return tokens, 0
	}
	tokens = tokens[1:]
	for len(tokens) > 1 && unitMarkers[strings.ToUpper(tokens[0])] {
		tokens = tokens[1:]
	}
	return tokens, n
}

func smallInt(s string, maxQuantity int) (int, bool) {
	if !intRe.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > maxQuantity {
		return 0, false
	}
	return n, true
}

// isPriceToken reports whether tok is entirely a price, as a unit price
// between the quantity and the line price is.
func isPriceToken(tok string) bool {
	p := findPrices(tok)
	return len(p) == 1 && p[0].start == 0 && p[0].end == len(tok) &&
		strings.IndexFunc(tok, unicode.IsLetter) < 0
}
