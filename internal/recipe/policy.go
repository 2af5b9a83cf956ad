package recipe

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zombor/pantry/internal/inventory"
)

// UrgencyLevel buckets the days until the nearest matched item spoils.
type UrgencyLevel string

const (
	UrgencyVeryUrgent UrgencyLevel = "very_urgent"
	UrgencyUrgent     UrgencyLevel = "urgent"
	UrgencyModerate   UrgencyLevel = "moderate"
	UrgencyLow        UrgencyLevel = "low"
	UrgencyVeryLow    UrgencyLevel = "very_low"
	UrgencyNone       UrgencyLevel = "none"
)

func levelFor(days *int) UrgencyLevel {
	switch {
	case days == nil:
		return UrgencyNone
	case *days <= 0:
		return UrgencyVeryUrgent
	case *days <= 3:
		return UrgencyUrgent
	case *days <= 7:
		return UrgencyModerate
	case *days <= 14:
		return UrgencyLow
	default:
		return UrgencyVeryLow
	}
}

// Recommendation is one ranked recipe.
type Recommendation struct {
	RecipeID          string       `json:"recipe_id"`
	Title             string       `json:"title"`
	SourceURL         string       `json:"source_url,omitempty"`
	Coverage          float64      `json:"coverage"`
	Urgency           float64      `json:"urgency"`
	Priority          float64      `json:"priority"`
	Matched           []string     `json:"matched"`
	Missing           []string     `json:"missing"`
	MissingEssential  []string     `json:"missing_essential"`
	NearestExpiryDays *int         `json:"nearest_expiry_days,omitempty"`
	UrgencyLevel      UrgencyLevel `json:"urgency_level"`
	Rationale         string       `json:"rationale"`
}

// Policy weighs coverage against spoilage urgency.
type Policy struct {
	CoverageWeight   float64
	UrgencyWeight    float64
	UrgencyScaleDays float64
	// Limit caps the number of recommendations; zero means no cap.
	Limit int
	// Staples are ingredients most kitchens keep, so they are not reported
	// as essential when missing.
	Staples []string
}

// DefaultPolicy returns the weights the service ships with.
func DefaultPolicy() Policy {
	return Policy{
		CoverageWeight:   0.7,
		UrgencyWeight:    0.3,
		UrgencyScaleDays: 3,
		Limit:            10,
		Staples:          []string{"salt", "pepper", "oil", "butter", "flour", "sugar", "garlic", "onion", "water"},
	}
}

// Urgency maps days until expiry to (0,1]. It is 1 on the expiry day and
// strictly decreasing in days.
func (p Policy) Urgency(days int) float64 {
	scale := p.UrgencyScaleDays
	if scale <= 0 {
		scale = 1
	}
	return 1 / (1 + float64(days)/scale)
}

// Rank turns candidates into recommendations ordered by priority. Equal
// priorities keep candidate order.
func (p Policy) Rank(candidates []Candidate, items []inventory.Item, now time.Time) []Recommendation {
	held := make(map[string]inventory.Item, len(items))
	for _, it := range items {
		if it.Quantity > 0 {
			held[it.CanonicalID] = it
		}
	}
	staples := make(map[string]bool, len(p.Staples))
	for _, s := range p.Staples {
		staples[s] = true
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, c := range candidates {
		rec := Recommendation{
			RecipeID:         c.Recipe.ID,
			Title:            c.Recipe.Title,
			SourceURL:        c.Recipe.SourceURL,
			Coverage:         c.Coverage,
			Matched:          c.Matched,
			Missing:          c.Missing,
			MissingEssential: []string{},
		}
		for _, m := range c.Missing {
			if !staples[m] {
				rec.MissingEssential = append(rec.MissingEssential, m)
			}
		}

		var nearest *inventory.Item
		for _, id := range c.Matched {
			it, ok := held[id]
			if !ok || it.Expired(now) {
				continue
			}
			if nearest == nil || it.DaysUntilExpiry(now) < nearest.DaysUntilExpiry(now) {
				nearest = &it
			}
		}
		if nearest != nil {
			days := nearest.DaysUntilExpiry(now)
			rec.NearestExpiryDays = &days
			rec.Urgency = p.Urgency(days)
		}

		rec.UrgencyLevel = levelFor(rec.NearestExpiryDays)
		rec.Priority = p.CoverageWeight*rec.Coverage + p.UrgencyWeight*rec.Urgency
		rec.Rationale = rationale(c, nearest, rec.NearestExpiryDays)
		recs = append(recs, rec)
	}

	slices.SortStableFunc(recs, func(a, b Recommendation) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	if p.Limit > 0 && len(recs) > p.Limit {
		recs = recs[:p.Limit]
	}
	return recs
}

func rationale(c Candidate, nearest *inventory.Item, days *int) string {
	total := len(c.Matched) + len(c.Missing)
	parts := []string{fmt.Sprintf("uses %d of %d required ingredients", len(c.Matched), total)}
	if len(c.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(c.Missing, ", "))
	}
	if nearest != nil {
		name := nearest.DisplayName
		if name == "" {
			name = nearest.CanonicalID
		}
		switch *days {
		case 0:
			parts = append(parts, name+" expires today")
		case 1:
			parts = append(parts, name+" expires in 1 day")
		default:
			parts = append(parts, fmt.Sprintf("%s expires in %d days", name, *days))
		}
	}
	return strings.Join(parts, "; ")
}

// Recommend scores recipes against items and ranks the survivors.
func Recommend(items []inventory.Item, recipes []Recipe, scorer Scorer, policy Policy, now time.Time) ([]Recommendation, ScoreSummary) {
	candidates, summary := scorer.Score(items, recipes)
	return policy.Rank(candidates, items, now), summary
}
