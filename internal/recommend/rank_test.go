package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recon-hq/recon/internal/model"
)

func scoredMovie(id int, score float64) model.ScoredCandidate {
	return model.ScoredCandidate{
		Movie:           model.Movie{ID: id, Title: "m"},
		SimilarityScore: score,
	}
}

func TestRank_DescendingAndTruncated(t *testing.T) {
	t.Parallel()

	subject := model.Movie{ID: 99, Title: "Subject", Genres: []string{"drama"}}

	var scored []model.ScoredCandidate
	for i := 1; i <= 12; i++ {
		scored = append(scored, scoredMovie(i, float64(i)/100))
	}

	result := Rank(subject, scored, DefaultMaxResults)

	assert.Len(t, result.Results, 8)
	assert.Equal(t, 12, result.Results[0].ID)
	assert.Equal(t, 5, result.Results[7].ID)
	for i := 1; i < len(result.Results); i++ {
		assert.GreaterOrEqual(t, result.Results[i-1].SimilarityScore, result.Results[i].SimilarityScore)
	}

	assert.Equal(t, model.MovieSummary{ID: 99, Title: "Subject", Genres: []string{"drama"}}, result.OriginalMovie)
}

func TestRank_StableOnTies(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredCandidate{
		scoredMovie(1, 0.5),
		scoredMovie(2, 0.8),
		scoredMovie(3, 0.5),
		scoredMovie(4, 0.5),
	}

	result := Rank(model.Movie{ID: 9}, scored, 8)

	ids := make([]int, len(result.Results))
	for i, r := range result.Results {
		ids[i] = r.ID
	}
	// Tied candidates keep their input order.
	assert.Equal(t, []int{2, 1, 3, 4}, ids)
}

func TestRank_EmptyInput(t *testing.T) {
	t.Parallel()

	result := Rank(model.Movie{ID: 7, Title: "Lone"}, nil, 8)

	assert.NotNil(t, result.Results)
	assert.Empty(t, result.Results)
	assert.Equal(t, 7, result.OriginalMovie.ID)
}

func TestRank_DefaultLimit(t *testing.T) {
	t.Parallel()

	var scored []model.ScoredCandidate
	for i := 1; i <= 20; i++ {
		scored = append(scored, scoredMovie(i, 0.1))
	}

	result := Rank(model.Movie{ID: 1}, scored, 0)
	assert.Len(t, result.Results, DefaultMaxResults)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	scored := []model.ScoredCandidate{
		scoredMovie(1, 0.1),
		scoredMovie(2, 0.9),
	}

	_ = Rank(model.Movie{ID: 5}, scored, 8)

	assert.Equal(t, 1, scored[0].ID)
	assert.Equal(t, 2, scored[1].ID)
}
