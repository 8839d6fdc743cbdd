// Package model defines the normalized movie types shared across the
// recommendation pipeline.
package model

// RawRecord is an untyped catalog API document. Fields may be missing,
// null, or carry the wrong type; nothing downstream of the normalizer
// touches one directly.
type RawRecord map[string]any

// EmptyResults is the soft-fail sentinel returned in place of an upstream
// payload when a tolerant call could not be completed.
func EmptyResults() RawRecord {
	return RawRecord{"results": []any{}}
}

// Movie is the fully-defaulted internal movie representation. Every field
// is safe to read without nil checks; see normalize.Movie for the
// defaulting rules.
type Movie struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	Genres       []string `json:"genres"`
	Popularity   float64  `json:"popularity"`
	ReleaseDate  string   `json:"release_date"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	VoteAverage  float64  `json:"vote_average"`
}

// Summary returns the subject-movie summary for a normalized movie.
func (m Movie) Summary() MovieSummary {
	return MovieSummary{ID: m.ID, Title: m.Title, Genres: m.Genres}
}

// ScoredCandidate is a movie plus its similarity to the subject movie.
// Immutable once produced by the scorer.
type ScoredCandidate struct {
	Movie
	SimilarityScore float64 `json:"similarity_score"`
	Reason          string  `json:"reason"`
}

// MovieSummary identifies the subject movie in a recommendation response.
type MovieSummary struct {
	ID     int      `json:"id"`
	Title  string   `json:"title"`
	Genres []string `json:"genres"`
}

// RecommendationResult is the terminal artifact of one recommendation
// request: up to the configured maximum of candidates ranked by
// descending similarity.
type RecommendationResult struct {
	Results       []ScoredCandidate `json:"results"`
	OriginalMovie MovieSummary      `json:"original_movie"`
}
