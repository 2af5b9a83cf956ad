// Package config loads the tuning inputs of the receipt parser, the
// inventory and the recommender.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/zombor/pantry/internal/inventory"
	"github.com/zombor/pantry/internal/normalize"
	"github.com/zombor/pantry/internal/receipt"
	"github.com/zombor/pantry/internal/recipe"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EnvPrefix prefixes environment overrides, e.g. PANTRY_RECOMMEND_LIMIT.
const EnvPrefix = "PANTRY"

// Settings is the full configuration.
type Settings struct {
	Parser     ParserSettings          `mapstructure:"parser"`
	Languages  []receipt.LanguageRules `mapstructure:"languages"`
	Dictionary []normalize.Entry       `mapstructure:"dictionary"`
	ShelfLife  inventory.ShelfLife     `mapstructure:"shelf_life"`
	Recommend  RecommendSettings       `mapstructure:"recommend"`
}

// ParserSettings tune line parsing and name matching.
type ParserSettings struct {
	ReviewThreshold      float64 `mapstructure:"review_threshold"`
	SimilarityFloor      float64 `mapstructure:"similarity_floor"`
	LowConfidenceCeiling float64 `mapstructure:"low_confidence_ceiling"`
	MaxQuantity          int     `mapstructure:"max_quantity"`
}

// RecommendSettings tune recipe scoring and ranking.
type RecommendSettings struct {
	MinCoverage      float64  `mapstructure:"min_coverage"`
	CoverageWeight   float64  `mapstructure:"coverage_weight"`
	UrgencyWeight    float64  `mapstructure:"urgency_weight"`
	UrgencyScaleDays float64  `mapstructure:"urgency_scale_days"`
	Limit            int      `mapstructure:"limit"`
	Staples          []string `mapstructure:"staples"`
}

// Load reads the built-in defaults, merges the YAML file at path when path is
// not empty, then applies PANTRY_* environment overrides.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultsYAML)); err != nil {
		return nil, fmt.Errorf("reading default config: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects settings the pipeline cannot run with.
func (s *Settings) Validate() error {
	var errs []error
	inUnit := func(name string, f float64) {
		if f < 0 || f > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1, got %v", name, f))
		}
	}
	inUnit("parser.review_threshold", s.Parser.ReviewThreshold)
	inUnit("parser.similarity_floor", s.Parser.SimilarityFloor)
	inUnit("parser.low_confidence_ceiling", s.Parser.LowConfidenceCeiling)
	inUnit("recommend.min_coverage", s.Recommend.MinCoverage)

	if s.Parser.MaxQuantity < 1 {
		errs = append(errs, fmt.Errorf("parser.max_quantity must be positive, got %d", s.Parser.MaxQuantity))
	}
	if s.Recommend.CoverageWeight < 0 || s.Recommend.UrgencyWeight < 0 {
		errs = append(errs, errors.New("recommend weights must not be negative"))
	}
	if s.Recommend.UrgencyScaleDays <= 0 {
		errs = append(errs, fmt.Errorf("recommend.urgency_scale_days must be positive, got %v", s.Recommend.UrgencyScaleDays))
	}
	if s.Recommend.Limit < 0 {
		errs = append(errs, fmt.Errorf("recommend.limit must not be negative, got %d", s.Recommend.Limit))
	}
	if len(s.Dictionary) == 0 {
		errs = append(errs, errors.New("dictionary is empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Normalizer builds the name normalizer from the dictionary section.
func (s *Settings) Normalizer() (*normalize.Normalizer, error) {
	dict, err := normalize.NewDictionary(s.Dictionary)
	if err != nil {
		return nil, fmt.Errorf("building dictionary: %w", err)
	}
	return normalize.New(dict, normalize.Options{
		SimilarityFloor:      s.Parser.SimilarityFloor,
		LowConfidenceCeiling: s.Parser.LowConfidenceCeiling,
	}), nil
}

// ReceiptParser builds the receipt parser over normalizer.
func (s *Settings) ReceiptParser(normalizer *normalize.Normalizer) (*receipt.Parser, error) {
	classifier, err := receipt.NewClassifier(s.Languages)
	if err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}
	return receipt.NewParser(classifier, normalizer, receipt.Options{
		ReviewThreshold: s.Parser.ReviewThreshold,
		MaxQuantity:     s.Parser.MaxQuantity,
	}), nil
}

// Scorer returns the recipe scorer.
func (s *Settings) Scorer() recipe.Scorer {
	return recipe.Scorer{MinCoverage: s.Recommend.MinCoverage}
}

// Policy returns the recommendation policy.
func (s *Settings) Policy() recipe.Policy {
	return recipe.Policy{
		CoverageWeight:   s.Recommend.CoverageWeight,
		UrgencyWeight:    s.Recommend.UrgencyWeight,
		UrgencyScaleDays: s.Recommend.UrgencyScaleDays,
		Limit:            s.Recommend.Limit,
		Staples:          s.Recommend.Staples,
	}
}
