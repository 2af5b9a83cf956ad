package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Method records how a name was resolved.
type Method string

const (
	MethodExact       Method = "exact"
	MethodApproximate Method = "approximate"
	MethodUnmatched   Method = "unmatched"
)

// approximateScale keeps approximate matches strictly below exact ones.
const approximateScale = 0.95

// unknownName is shown when nothing readable survives cleaning.
const unknownName = "unknown item"

// Result is the outcome of normalizing one raw product name.
type Result struct {
	Normalized  string  `json:"normalized_name"`
	CanonicalID string  `json:"canonical_id,omitempty"`
	DisplayName string  `json:"display_name"`
	Confidence  float64 `json:"confidence"`
	Method      Method  `json:"method"`
}

// Matched reports whether a canonical id was assigned.
func (r Result) Matched() bool {
	return r.CanonicalID != ""
}

// Options tune approximate matching.
type Options struct {
	// SimilarityFloor is the minimum similarity for an approximate match.
	SimilarityFloor float64
	// LowConfidenceCeiling caps the confidence of unmatched names.
	LowConfidenceCeiling float64
}

// DefaultOptions mirrors the thresholds the receipt pipeline ships with.
func DefaultOptions() Options {
	return Options{SimilarityFloor: 0.72, LowConfidenceCeiling: 0.3}
}

// Normalizer resolves raw names against a Dictionary. It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	dict *Dictionary
	opts Options
}

// New creates a Normalizer over dict.
func New(dict *Dictionary, opts Options) *Normalizer {
	return &Normalizer{dict: dict, opts: opts}
}

// Normalize cleans raw and maps it to a canonical id when it can.
func (n *Normalizer) Normalize(raw string) Result {
	cleaned := CleanName(raw)
	res := Result{Normalized: cleaned, Method: MethodUnmatched}
	if cleaned == "" {
		res.Normalized = strings.TrimSpace(raw)
		if res.Normalized == "" {
			res.Normalized = unknownName
		}
		res.DisplayName = res.Normalized
		return res
	}

	if id, ok := n.dict.Exact(cleaned); ok {
		res.CanonicalID = id
		res.DisplayName = n.dict.DisplayName(id)
		res.Confidence = 1
		res.Method = MethodExact
		return res
	}

	_, id, score := n.dict.Closest(cleaned)
	if id != "" && score >= n.opts.SimilarityFloor {
		res.CanonicalID = id
		res.DisplayName = n.dict.DisplayName(id)
		res.Confidence = score * approximateScale
		res.Method = MethodApproximate
		return res
	}

	res.Confidence = min(score, n.opts.LowConfidenceCeiling)
	res.DisplayName = cases.Title(language.Und).String(cleaned)
	return res
}

// Dictionary returns the dictionary the normalizer matches against.
func (n *Normalizer) Dictionary() *Dictionary {
	return n.dict
}
