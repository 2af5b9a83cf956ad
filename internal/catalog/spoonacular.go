package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zombor/pantry/internal/normalize"
	"github.com/zombor/pantry/internal/recipe"
)

const spoonacularURL = "https://api.spoonacular.com"

// SpoonacularSource queries the Spoonacular findByIngredients endpoint.
// Ingredient names in the response are mapped back to canonical ids through
// the normalizer.
type SpoonacularSource struct {
	baseURL    string
	apiKey     string
	number     int
	client     *http.Client
	limiter    *rate.Limiter
	normalizer *normalize.Normalizer
}

// SpoonacularOptions configure a SpoonacularSource.
type SpoonacularOptions struct {
	BaseURL string
	APIKey  string
	// Number is how many recipes to request.
	Number int
	// RequestsPerSecond throttles outgoing calls.
	RequestsPerSecond float64
}

// NewSpoonacular creates a Spoonacular catalog source.
func NewSpoonacular(opts SpoonacularOptions, normalizer *normalize.Normalizer) (*SpoonacularSource, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("spoonacular api key is required")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spoonacularURL
	}
	if opts.Number <= 0 {
		opts.Number = 20
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}

	return &SpoonacularSource{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		number:     opts.Number,
		client:     &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		normalizer: normalizer,
	}, nil
}

type spoonacularIngredient struct {
	Name     string `json:"name"`
	Original string `json:"original"`
}

type spoonacularRecipe struct {
	ID                int                     `json:"id"`
	Title             string                  `json:"title"`
	SourceURL         string                  `json:"sourceUrl"`
	UsedIngredients   []spoonacularIngredient `json:"usedIngredients"`
	MissedIngredients []spoonacularIngredient `json:"missedIngredients"`
}

// FetchCandidates asks Spoonacular for recipes using ids.
func (s *SpoonacularSource) FetchCandidates(ctx context.Context, ids []string) ([]recipe.Recipe, error) {
	if len(ids) == 0 {
		return []recipe.Recipe{}, nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, s.queryName(id))
	}

	q := url.Values{}
	q.Set("ingredients", strings.Join(names, ","))
	q.Set("number", strconv.Itoa(s.number))
	q.Set("ranking", "2")
	q.Set("ignorePantry", "true")
	q.Set("apiKey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/recipes/findByIngredients?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling spoonacular API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spoonacular API error (status %d): %s", resp.StatusCode, string(body))
	}

	var found []spoonacularRecipe
	if err := json.NewDecoder(resp.Body).Decode(&found); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	out := make([]recipe.Recipe, 0, len(found))
	for _, f := range found {
		r := recipe.Recipe{
			ID:        "spoonacular-" + strconv.Itoa(f.ID),
			Title:     f.Title,
			SourceURL: f.SourceURL,
		}
		if r.SourceURL == "" {
			r.SourceURL = fmt.Sprintf("https://spoonacular.com/recipes/%d", f.ID)
		}
		for _, ing := range f.UsedIngredients {
			r.Required = append(r.Required, s.canonicalID(ing.Name))
		}
		for _, ing := range f.MissedIngredients {
			r.Required = append(r.Required, s.canonicalID(ing.Name))
		}
		out = append(out, r)
	}
	return out, nil
}

// queryName is the English name Spoonacular understands for id.
func (s *SpoonacularSource) queryName(id string) string {
	if name := s.normalizer.Dictionary().DisplayName(id); name != "" {
		return strings.ToLower(name)
	}
	return strings.ReplaceAll(id, "_", " ")
}

// canonicalID maps a Spoonacular ingredient name to a dictionary id, or to
// its folded form when the dictionary has no match.
func (s *SpoonacularSource) canonicalID(name string) string {
	if res := s.normalizer.Normalize(name); res.Matched() {
		return res.CanonicalID
	}
	return normalize.Fold(name)
}
