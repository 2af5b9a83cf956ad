package normalize

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	// tokenMatchFloor is the edit ratio at which two single tokens count as
	// the same word during token overlap.
	tokenMatchFloor = 0.8
	// overlapWeight caps token-overlap scores below an exact match.
	overlapWeight = 0.9
	// minOverlapKey is the shortest key, in runes, eligible for token overlap.
	minOverlapKey = 3
)

// Similarity scores how well text matches a dictionary key, in [0,1]. It is
// the larger of the normalized edit-distance ratio and the share of key tokens
// found in text. Both arguments are expected to be folded already.
func Similarity(text, key string) float64 {
	if text == key {
		return 1
	}
	return max(editRatio(text, key), tokenOverlap(text, key))
}

func editRatio(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}

// tokenOverlap is asymmetric: every key token needs a distinct close match in
// text, so "kasar peyniri" covers "peynir" but "peynir" does not cover
// "kasar peyniri".
func tokenOverlap(text, key string) float64 {
	if utf8.RuneCountInString(key) < minOverlapKey {
		return 0
	}
	keyTokens := strings.Fields(key)
	textTokens := strings.Fields(text)
	if len(keyTokens) == 0 || len(textTokens) == 0 {
		return 0
	}

	used := make([]bool, len(textTokens))
	matched := 0
	for _, kt := range keyTokens {
		for i, tt := range textTokens {
			if used[i] || editRatio(tt, kt) < tokenMatchFloor {
				continue
			}
			used[i] = true
			matched++
			break
		}
	}
	return overlapWeight * float64(matched) / float64(len(keyTokens))
}
