package receipt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Cents is a price in minor currency units.
type Cents int64

// String formats c as a decimal with two fraction digits.
func (c Cents) String() string {
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON encodes c as a JSON number, e.g. 25.90.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (c *Cents) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parsing price %q: %w", s, err)
	}
	*c = Cents(math.Round(f * 100))
	return nil
}

// maxWhole is the largest whole amount that still fits in Cents.
const maxWhole = (math.MaxInt64 - 99) / 100

// parseCents converts a printed amount such as "25.90", "12,5" or "1.234,50"
// to cents. The last separator is the decimal separator; earlier ones group
// thousands.
func parseCents(s string) (Cents, error) {
	i := strings.LastIndexAny(s, ".,")
	if i < 0 {
		return 0, fmt.Errorf("no decimal separator in %q", s)
	}
	whole := strings.NewReplacer(".", "", ",", "").Replace(s[:i])
	frac := s[i+1:]
	if len(frac) == 1 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	if w > maxWhole {
		return 0, fmt.Errorf("amount %q out of range", s)
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing amount %q: %w", s, err)
	}
	return Cents(w*100 + f), nil
}
