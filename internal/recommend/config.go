// Package recommend implements the movie recommendation pipeline: candidate
// enrichment, multi-factor similarity scoring, and ranking.
package recommend

import (
	"fmt"
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// ScoreConfig holds the similarity weights, penalties, and thresholds.
// The penalty constants are heuristic; they are kept configurable rather
// than derived.
type ScoreConfig struct {
	// Weights (sum = 1.0 before penalties).
	GenreWeight      float64 `mapstructure:"genre_weight"`
	OverviewWeight   float64 `mapstructure:"overview_weight"`
	PopularityWeight float64 `mapstructure:"popularity_weight"`
	RecencyWeight    float64 `mapstructure:"recency_weight"`

	// PopularityCeiling caps the candidate popularity signal: the factor
	// is min(1, popularity/ceiling).
	PopularityCeiling float64 `mapstructure:"popularity_ceiling"`

	// RecencyHorizonYears is the age at which the recency factor reaches 0.
	RecencyHorizonYears float64 `mapstructure:"recency_horizon_years"`

	// Near-duplicate genre penalty: applied when the genre intersection
	// has at least MinShared entries and both sets have at most MaxGenres.
	NearDuplicatePenalty   float64 `mapstructure:"near_duplicate_penalty"`
	NearDuplicateMinShared int     `mapstructure:"near_duplicate_min_shared"`
	NearDuplicateMaxGenres int     `mapstructure:"near_duplicate_max_genres"`

	// Title-overlap penalty: applied when the lowercase titles share at
	// least MinWords distinct words. Guards against sequels and reissues
	// dominating by title similarity.
	TitleOverlapPenalty  float64 `mapstructure:"title_overlap_penalty"`
	TitleOverlapMinWords int     `mapstructure:"title_overlap_min_words"`

	// Reason-string thresholds.
	OverviewReasonThreshold float64 `mapstructure:"overview_reason_threshold"`
	RecencyReasonThreshold  float64 `mapstructure:"recency_reason_threshold"`
	MaxReasonGenres         int     `mapstructure:"max_reason_genres"`
}

// DefaultScoreConfig returns the scoring defaults. Weights sum to 1.0.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		GenreWeight:      0.70,
		OverviewWeight:   0.20,
		PopularityWeight: 0.05,
		RecencyWeight:    0.05,

		PopularityCeiling:   200,
		RecencyHorizonYears: 10,

		NearDuplicatePenalty:   0.30,
		NearDuplicateMinShared: 3,
		NearDuplicateMaxGenres: 4,

		TitleOverlapPenalty:  0.20,
		TitleOverlapMinWords: 2,

		OverviewReasonThreshold: 0.10,
		RecencyReasonThreshold:  0.50,
		MaxReasonGenres:         3,
	}
}

// WeightSum returns the sum of the factor weights.
func WeightSum(c ScoreConfig) float64 {
	return c.GenreWeight + c.OverviewWeight + c.PopularityWeight + c.RecencyWeight
}

// ValidateConfig checks that a ScoreConfig is internally consistent.
func ValidateConfig(c ScoreConfig) error {
	var errs []string

	weights := map[string]float64{
		"genre_weight":      c.GenreWeight,
		"overview_weight":   c.OverviewWeight,
		"popularity_weight": c.PopularityWeight,
		"recency_weight":    c.RecencyWeight,
	}
	for name, w := range weights {
		if w < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0", name))
		}
	}

	// Weights should sum to 1.0 (allow tolerance for floating-point).
	if math.Abs(WeightSum(c)-1.0) > 0.01 {
		errs = append(errs, fmt.Sprintf("weights should sum to 1.0, got %.2f", WeightSum(c)))
	}

	for name, p := range map[string]float64{
		"near_duplicate_penalty": c.NearDuplicatePenalty,
		"title_overlap_penalty":  c.TitleOverlapPenalty,
	} {
		if p < 0 || p > 1 {
			errs = append(errs, fmt.Sprintf("%s must be between 0 and 1", name))
		}
	}

	if c.PopularityCeiling <= 0 {
		errs = append(errs, "popularity_ceiling must be > 0")
	}
	if c.RecencyHorizonYears <= 0 {
		errs = append(errs, "recency_horizon_years must be > 0")
	}
	if c.NearDuplicateMinShared < 1 {
		errs = append(errs, "near_duplicate_min_shared must be >= 1")
	}
	if c.TitleOverlapMinWords < 1 {
		errs = append(errs, "title_overlap_min_words must be >= 1")
	}

	if len(errs) > 0 {
		return eris.Errorf("recommend: score config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
