package recipe

import (
	"log/slog"

	"github.com/zombor/pantry/internal/inventory"
)

// DefaultMinCoverage is the smallest coverage a recipe needs to be
// considered.
const DefaultMinCoverage = 0.25

// Candidate is a recipe that passed the coverage threshold.
type Candidate struct {
	Recipe   Recipe
	Coverage float64
	Matched  []string
	Missing  []string
}

// ScoreSummary counts what happened to each recipe.
type ScoreSummary struct {
	Considered int `json:"considered"`
	Scored     int `json:"scored"`
	Excluded   int `json:"excluded"`
	Invalid    int `json:"invalid"`
}

// Scorer computes ingredient coverage.
type Scorer struct {
	MinCoverage float64
}

// Score returns the recipes whose coverage reaches MinCoverage, in catalog
// order. Recipes without required ingredients never qualify. Invalid recipes
// are skipped and counted.
func (s Scorer) Score(items []inventory.Item, recipes []Recipe) ([]Candidate, ScoreSummary) {
	have := make(map[string]bool, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			have[it.CanonicalID] = true
		}
	}

	var (
		out     []Candidate
		summary ScoreSummary
	)
	for _, r := range recipes {
		summary.Considered++
		if err := r.Validate(); err != nil {
			slog.Warn("Skipping recipe", "recipe", r.ID, "error", err)
			summary.Invalid++
			continue
		}

		required := r.RequiredSet()
		if len(required) == 0 {
			summary.Excluded++
			continue
		}

		c := Candidate{Recipe: r, Matched: []string{}, Missing: []string{}}
		for _, ing := range required {
			if have[ing] {
				c.Matched = append(c.Matched, ing)
			} else {
				c.Missing = append(c.Missing, ing)
			}
		}
		c.Coverage = float64(len(c.Matched)) / float64(len(required))

		if len(c.Matched) == 0 || c.Coverage < s.MinCoverage {
			summary.Excluded++
			continue
		}
		summary.Scored++
		out = append(out, c)
	}
	return out, summary
}
