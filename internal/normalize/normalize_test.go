package normalize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/recon-hq/recon/internal/model"
)

func TestMovie_EmptyRecord(t *testing.T) {
	t.Parallel()

	m := Movie(model.RawRecord{})

	assert.Equal(t, 0, m.ID)
	assert.Equal(t, PlaceholderTitle, m.Title)
	assert.Equal(t, "", m.Overview)
	assert.Equal(t, []string{}, m.Genres)
	assert.Equal(t, 0.0, m.Popularity)
	assert.Equal(t, "", m.ReleaseDate)
	assert.Equal(t, "", m.PosterPath)
	assert.Equal(t, "", m.BackdropPath)
	assert.Equal(t, 0.0, m.VoteAverage)
}

func TestMovie_FullRecord(t *testing.T) {
	t.Parallel()

	m := Movie(model.RawRecord{
		"id":            float64(603),
		"title":         "The Matrix",
		"overview":      "a hacker learns the truth",
		"genres":        []any{map[string]any{"id": float64(28), "name": "Action"}, map[string]any{"name": "Science Fiction"}},
		"popularity":    float64(85.3),
		"release_date":  "1999-03-31",
		"poster_path":   "/matrix.jpg",
		"backdrop_path": "/matrix-bg.jpg",
		"vote_average":  float64(8.2),
	})

	assert.Equal(t, 603, m.ID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, []string{"action", "science fiction"}, m.Genres)
	assert.Equal(t, 85.3, m.Popularity)
	assert.Equal(t, "1999-03-31", m.ReleaseDate)
	assert.Equal(t, ImageBaseURL+"/matrix.jpg", m.PosterPath)
	assert.Equal(t, ImageBaseURL+"/matrix-bg.jpg", m.BackdropPath)
	assert.Equal(t, 8.2, m.VoteAverage)
}

func TestMovie_MistypedFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  model.RawRecord
		want func(t *testing.T, m model.Movie)
	}{
		{
			name: "null values",
			raw:  model.RawRecord{"id": nil, "title": nil, "genres": nil, "popularity": nil},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 0, m.ID)
				assert.Equal(t, PlaceholderTitle, m.Title)
				assert.Equal(t, []string{}, m.Genres)
				assert.Equal(t, 0.0, m.Popularity)
			},
		},
		{
			name: "string popularity",
			raw:  model.RawRecord{"popularity": "42.5"},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 42.5, m.Popularity)
			},
		},
		{
			name: "garbage string popularity",
			raw:  model.RawRecord{"popularity": "very popular"},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 0.0, m.Popularity)
			},
		},
		{
			name: "negative popularity floored",
			raw:  model.RawRecord{"popularity": float64(-3)},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 0.0, m.Popularity)
			},
		},
		{
			name: "vote average clamped",
			raw:  model.RawRecord{"vote_average": float64(37)},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 10.0, m.VoteAverage)
			},
		},
		{
			// ParseFloat accepts "NaN" and "Inf"; neither is a usable
			// popularity and NaN would survive a plain floor comparison.
			name: "NaN string popularity rejected",
			raw:  model.RawRecord{"popularity": "NaN", "vote_average": "NaN"},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 0.0, m.Popularity)
				assert.Equal(t, 0.0, m.VoteAverage)
			},
		},
		{
			name: "infinite popularity rejected",
			raw:  model.RawRecord{"popularity": math.Inf(1)},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 0.0, m.Popularity)
			},
		},
		{
			name: "string id",
			raw:  model.RawRecord{"id": "550"},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, 550, m.ID)
			},
		},
		{
			name: "non-list genres",
			raw:  model.RawRecord{"genres": "Action"},
			want: func(t *testing.T, m model.Movie) {
				assert.Equal(t, []string{}, m.Genres)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.want(t, Movie(tt.raw))
		})
	}
}

func TestGenreSet_StringListDedup(t *testing.T) {
	t.Parallel()

	m := Movie(model.RawRecord{
		"genres": []any{"Drama", "drama", " Action ", "", float64(18)},
	})

	assert.Equal(t, []string{"action", "drama"}, m.Genres)
}

func TestMovie_AbsoluteImageURLKept(t *testing.T) {
	t.Parallel()

	m := Movie(model.RawRecord{"poster_path": "https://cdn.example.com/p.jpg"})
	assert.Equal(t, "https://cdn.example.com/p.jpg", m.PosterPath)
}

func TestResults(t *testing.T) {
	t.Parallel()

	raw := model.RawRecord{
		"results": []any{
			map[string]any{"id": float64(1)},
			"junk",
			map[string]any{"id": float64(2)},
		},
	}

	got := Results(raw)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, ID(got[0]))
	assert.Equal(t, 2, ID(got[1]))

	assert.Empty(t, Results(model.RawRecord{}))
	assert.Empty(t, Results(model.RawRecord{"results": "nope"}))
}

func TestHasIDHasTitle(t *testing.T) {
	t.Parallel()

	assert.True(t, HasID(model.RawRecord{"id": float64(5)}))
	assert.False(t, HasID(model.RawRecord{}))
	assert.False(t, HasID(model.RawRecord{"id": "abc"}))

	assert.True(t, HasTitle(model.RawRecord{"title": "Heat"}))
	assert.False(t, HasTitle(model.RawRecord{"title": "   "}))
	assert.False(t, HasTitle(model.RawRecord{}))
}
