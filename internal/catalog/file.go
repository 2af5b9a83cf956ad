package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zombor/pantry/internal/recipe"
)

type catalogFile struct {
	Recipes []yaml.Node `yaml:"recipes"`
}

// FileSource serves recipes from a local YAML catalog.
type FileSource struct {
	recipes []recipe.Recipe
}

// NewFileSource loads the catalog at path. Entries that do not decode as a
// recipe are logged and skipped.
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe catalog: %w", err)
	}
	return ParseFileSource(data)
}

// ParseFileSource builds a FileSource from YAML catalog data.
func ParseFileSource(data []byte) (*FileSource, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing recipe catalog: %w", err)
	}

	s := &FileSource{}
	for i, node := range f.Recipes {
		var r recipe.Recipe
		if err := node.Decode(&r); err != nil {
			slog.Warn("Skipping malformed catalog entry", "index", i, "line", node.Line, "error", err)
			continue
		}
		s.recipes = append(s.recipes, r)
	}
	slog.Info("Loaded recipe catalog", "recipes", len(s.recipes), "entries", len(f.Recipes))
	return s, nil
}

// Len returns the number of recipes in the catalog.
func (s *FileSource) Len() int {
	return len(s.recipes)
}

// FetchCandidates returns, in catalog order, the recipes that use at least
// one of ids.
func (s *FileSource) FetchCandidates(ctx context.Context, ids []string) ([]recipe.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	out := []recipe.Recipe{}
	for _, r := range s.recipes {
		if sharesIngredient(r, want) {
			out = append(out, r)
		}
	}
	return out, nil
}
