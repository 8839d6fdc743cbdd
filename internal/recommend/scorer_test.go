package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/recon-hq/recon/internal/model"
)

func fixedClock(year int) ScorerOption {
	return WithClock(func() time.Time {
		return time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestScore_WeightedExample(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	subject := model.Movie{ID: 1, Title: "A", Genres: []string{"action", "drama"}, Overview: "a hero fights"}
	candidate := model.Movie{ID: 2, Title: "B", Genres: []string{"action", "drama"}, Overview: "a hero fights evil"}

	score, reason := s.Score(subject, candidate)

	// genre 1.0 * 0.7 + overview 3/4 * 0.2, popularity and recency zero.
	assert.InDelta(t, 0.85, score, 1e-9)
	assert.Equal(t, "Shares genres: Action, Drama; Similar themes", reason)
}

func TestScore_GenreTermSymmetric(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	a := model.Movie{ID: 1, Title: "A", Genres: []string{"action", "thriller", "crime"}}
	b := model.Movie{ID: 2, Title: "B", Genres: []string{"action", "drama"}}

	ab, _ := s.Score(a, b)
	ba, _ := s.Score(b, a)

	assert.InDelta(t, ab, ba, 1e-9)
}

func TestScore_NearDuplicatePenalty(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	m := model.Movie{
		ID:       10,
		Title:    "The Raid",
		Genres:   []string{"action", "crime", "thriller"},
		Overview: "an elite squad storms a tower",
	}
	twin := m
	twin.ID = 11

	score, _ := s.Score(m, twin)

	// Unpenalized weighted sum is 0.9 (genre 1.0, overview 1.0); the
	// near-duplicate and title-overlap penalties both fire.
	assert.InDelta(t, 0.4, score, 1e-9)
	assert.Less(t, score, 0.9)
}

func TestScore_NoNearDuplicatePenaltyForDiverseSets(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	// Five genres each: intersection is large but sets are not "small",
	// so the near-duplicate guard does not apply.
	genres := []string{"action", "adventure", "crime", "drama", "thriller"}
	a := model.Movie{ID: 1, Title: "A", Genres: genres}
	b := model.Movie{ID: 2, Title: "B", Genres: genres}

	score, _ := s.Score(a, b)
	assert.InDelta(t, 0.7, score, 1e-9)
}

func TestScore_TitleOverlapPenalty(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	a := model.Movie{ID: 1, Title: "Night Watch", Genres: []string{"horror"}}
	b := model.Movie{ID: 2, Title: "Night Watch Returns", Genres: []string{"horror"}}

	withPenalty, _ := s.Score(a, b)

	b.Title = "Dawn Patrol"
	without, _ := s.Score(a, b)

	assert.InDelta(t, 0.2, without-withPenalty, 1e-9)
}

func TestScore_Recency(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig(), fixedClock(2026))

	subject := model.Movie{ID: 1, Title: "A", Genres: []string{"drama"}}
	recent := model.Movie{ID: 2, Title: "B", Genres: []string{"comedy"}, ReleaseDate: "2026-01-15"}

	score, reason := s.Score(subject, recent)
	assert.InDelta(t, 0.05, score, 1e-9)
	assert.Equal(t, "Recent release", reason)

	old := recent
	old.ReleaseDate = "1994-09-23"
	score, reason = s.Score(subject, old)
	assert.InDelta(t, 0.0, score, 1e-9)
	assert.Equal(t, "Similar movie", reason)

	undated := recent
	undated.ReleaseDate = ""
	score, _ = s.Score(subject, undated)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestScore_FutureReleaseClamped(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig(), fixedClock(2026))

	subject := model.Movie{ID: 1, Title: "A"}
	future := model.Movie{ID: 2, Title: "B", ReleaseDate: "2031-01-01"}

	score, _ := s.Score(subject, future)
	assert.InDelta(t, 0.05, score, 1e-9)
}

func TestScore_ReasonListsAtMostThreeGenres(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	genres := []string{"action", "adventure", "crime", "drama", "thriller"}
	a := model.Movie{ID: 1, Title: "A", Genres: genres}
	b := model.Movie{ID: 2, Title: "B", Genres: genres}

	_, reason := s.Score(a, b)
	assert.Equal(t, "Shares genres: Action, Adventure, Crime", reason)
}

func TestScore_InvalidMovies(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())
	valid := model.Movie{ID: 1, Title: "A"}

	score, reason := s.Score(model.Movie{}, valid)
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "Invalid movie data", reason)

	score, reason = s.Score(valid, model.Movie{ID: -7})
	assert.Equal(t, 0.0, score)
	assert.Equal(t, "Invalid movie data", reason)
}

func TestScore_AlwaysInRange(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	adversarial := []model.Movie{
		{},
		{ID: 1},
		{ID: 2, Title: "   ", Overview: "\t\n"},
		{ID: 3, Popularity: 1e12, VoteAverage: -50},
		{ID: 4, Genres: []string{""}, ReleaseDate: "not-a-date"},
		{ID: 5, Title: "x x x x x", Genres: []string{"a", "b", "c"}},
		{ID: 6, Popularity: -1000},
		{ID: 7, Popularity: math.NaN(), VoteAverage: math.NaN()},
		{ID: 8, Popularity: math.Inf(1)},
	}

	for _, subject := range adversarial {
		for _, candidate := range adversarial {
			score, reason := s.Score(subject, candidate)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
			assert.NotEmpty(t, reason)
		}
	}
}

func TestScore_NegativePopularityFloored(t *testing.T) {
	t.Parallel()

	s := NewScorer(DefaultScoreConfig())

	// No shared signals at all: popularity is the only nonzero factor, so
	// a hostile negative value would drag the whole sum below 0.
	score, _ := s.Score(
		model.Movie{ID: 1},
		model.Movie{ID: 2, Popularity: -1000},
	)
	assert.Equal(t, 0.0, score)
}
