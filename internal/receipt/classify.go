package receipt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/zombor/pantry/internal/normalize"
)

// LanguageRules are the boilerplate and total markers for one receipt
// language. Keywords and patterns are matched against folded text, so they
// may be written with or without diacritics.
type LanguageRules struct {
	Language      string   `mapstructure:"language"`
	NoiseKeywords []string `mapstructure:"noise_keywords"`
	NoisePatterns []string `mapstructure:"noise_patterns"`
	TotalKeywords []string `mapstructure:"total_keywords"`
}

// barcodeRe matches a barcode-only line: more than ten digits, no separators.
var barcodeRe = regexp.MustCompile(`^\d{11,}$`)

// Classifier assigns a LineClass to a single line. It carries no state
// between lines and is safe for concurrent use.
type Classifier struct {
	noiseKeywords []string
	noisePatterns []*regexp.Regexp
	totalKeywords []string
}

// NewClassifier compiles the rules of every configured language.
func NewClassifier(rules []LanguageRules) (*Classifier, error) {
	c := &Classifier{}
	for _, lr := range rules {
		c.noiseKeywords = appendFolded(c.noiseKeywords, lr.NoiseKeywords)
		c.totalKeywords = appendFolded(c.totalKeywords, lr.TotalKeywords)
		for _, p := range lr.NoisePatterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("compiling %s noise pattern %q: %w", lr.Language, p, err)
			}
			c.noisePatterns = append(c.noisePatterns, re)
		}
	}
	return c, nil
}

func appendFolded(dst, keywords []string) []string {
	for _, k := range keywords {
		if f := normalize.Fold(k); f != "" {
			dst = append(dst, f)
		}
	}
	return dst
}

// Classify applies the rules in order and returns the first that matches:
// noise, total, product, otherwise unknown.
func (c *Classifier) Classify(line RawLine) LineClass {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return LineUnknown
	}
	folded := normalize.Fold(text)

	if c.isNoise(text, folded) {
		return LineNoise
	}
	if containsDigit(text) && containsPhrase(folded, c.totalKeywords) {
		return LineTotal
	}
	if hasAlphaToken(text) && hasPrice(text) {
		return LineProduct
	}
	return LineUnknown
}

func (c *Classifier) isNoise(text, folded string) bool {
	if barcodeRe.MatchString(text) {
		return true
	}
	if containsPhrase(folded, c.noiseKeywords) {
		return true
	}
	for _, re := range c.noisePatterns {
		if re.MatchString(folded) {
			return true
		}
	}
	return false
}

// containsPhrase reports whether any phrase occurs in folded on word
// boundaries.
func containsPhrase(folded string, phrases []string) bool {
	padded := " " + folded + " "
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			return true
		}
	}
	return false
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// hasAlphaToken reports whether some whitespace-separated token has two or
// more letters.
func hasAlphaToken(s string) bool {
	for _, tok := range strings.Fields(s) {
		letters := 0
		for _, r := range tok {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		if letters >= 2 {
			return true
		}
	}
	return false
}
