package recommend

import (
	"sort"

	"github.com/recon-hq/recon/internal/model"
)

// DefaultMaxResults bounds the ranked list handed back to callers.
const DefaultMaxResults = 8

// Rank sorts scored candidates by descending similarity and truncates to
// limit. The sort is stable: candidates with equal scores keep their
// original pool order. The result wraps the subject movie's summary.
func Rank(subject model.Movie, scored []model.ScoredCandidate, limit int) *model.RecommendationResult {
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	ranked := make([]model.ScoredCandidate, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return &model.RecommendationResult{
		Results:       ranked,
		OriginalMovie: subject.Summary(),
	}
}
