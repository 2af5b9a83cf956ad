package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

type linesResponse struct {
	Lines []string `json:"lines"`
}

// parseLinesJSON reads the lines out of a model response. Models sometimes
// ignore the JSON instruction and answer with the bare transcription, so a
// response without a JSON object is split on newlines instead.
func parseLinesJSON(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []string
	startIdx := strings.Index(text, "{")
	endIdx := strings.LastIndex(text, "}")
	if startIdx != -1 && endIdx > startIdx {
		var resp linesResponse
		if err := json.Unmarshal([]byte(text[startIdx:endIdx+1]), &resp); err != nil {
			return nil, fmt.Errorf("unmarshaling json: %w", err)
		}
		raw = resp.Lines
	} else {
		raw = splitLines(text)
	}

	lines := cleanLines(raw)
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

// cleanLines trims every line and drops the blank ones.
func cleanLines(raw []string) []string {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
