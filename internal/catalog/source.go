// Package catalog fetches candidate recipes for a set of inventory ids.
package catalog

import (
	"context"

	"github.com/zombor/pantry/internal/recipe"
)

// Source returns recipes that may use the given canonical ingredient ids.
type Source interface {
	FetchCandidates(ctx context.Context, ids []string) ([]recipe.Recipe, error)
}

func sharesIngredient(r recipe.Recipe, ids map[string]bool) bool {
	for _, list := range [][]string{r.Required, r.Optional} {
		for _, ing := range list {
			if ids[ing] {
				return true
			}
		}
	}
	return false
}
