// Package recipe scores known recipes against a user's inventory and ranks
// them by ingredient coverage and spoilage urgency.
package recipe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecipe marks a catalog entry that cannot be scored.
var ErrInvalidRecipe = errors.New("invalid recipe")

// Recipe is a catalog entry. Ingredients are canonical product ids.
type Recipe struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title" yaml:"title"`
	Required  []string `json:"required" yaml:"required"`
	Optional  []string `json:"optional,omitempty" yaml:"optional"`
	SourceURL string   `json:"source_url,omitempty" yaml:"source_url"`
}

// Validate checks that the recipe has an id and no blank ingredients.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidRecipe)
	}
	for _, list := range [][]string{r.Required, r.Optional} {
		for i, ing := range list {
			if strings.TrimSpace(ing) == "" {
				return fmt.Errorf("%w: %s has a blank ingredient at position %d", ErrInvalidRecipe, r.ID, i)
			}
		}
	}
	return nil
}

// RequiredSet returns the required ingredients without duplicates, in
// catalog order.
func (r Recipe) RequiredSet() []string {
	seen := make(map[string]bool, len(r.Required))
	out := make([]string, 0, len(r.Required))
	for _, ing := range r.Required {
		ing = strings.TrimSpace(ing)
		if seen[ing] {
			continue
		}
		seen[ing] = true
		out = append(out, ing)
	}
	return out
}
