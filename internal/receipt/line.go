package receipt

import (
	"fmt"
	"strings"
)

// RawLine is one line of OCR output and its position in that output.
type RawLine struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Lines splits an OCR text block into raw lines. Blank lines are skipped but
// still advance the index, so Index always points at the source line.
func Lines(text string) []RawLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var lines []RawLine
	for i, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, RawLine{Index: i, Text: l})
	}
	return lines
}

// NewLines wraps already-split OCR lines, indexing them in order.
func NewLines(texts []string) []RawLine {
	lines := make([]RawLine, 0, len(texts))
	for i, t := range texts {
		lines = append(lines, RawLine{Index: i, Text: t})
	}
	return lines
}

// LineClass is the classifier's verdict for one line.
type LineClass int

const (
	LineUnknown LineClass = iota
	LineProduct
	LineNoise
	LineTotal
)

var lineClassNames = map[LineClass]string{
	LineUnknown: "unknown",
	LineProduct: "product",
	LineNoise:   "noise",
	LineTotal:   "total",
}

func (c LineClass) String() string {
	if name, ok := lineClassNames[c]; ok {
		return name
	}
	return fmt.Sprintf("LineClass(%d)", int(c))
}

// MarshalText encodes the class by name.
func (c LineClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name.
func (c *LineClass) UnmarshalText(text []byte) error {
	for class, name := range lineClassNames {
		if name == string(text) {
			*c = class
			return nil
		}
	}
	return fmt.Errorf("unknown line class %q", text)
}
