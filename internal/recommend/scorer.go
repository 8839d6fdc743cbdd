package recommend

import (
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/recon-hq/recon/internal/model"
)

// Fallback reasons for degenerate scorer outcomes.
const (
	reasonInvalid  = "Invalid movie data"
	reasonFault    = "Error calculating similarity"
	reasonFallback = "Similar movie"
)

// Scorer computes a bounded similarity score and a human-readable reason
// for a subject/candidate movie pair. Scoring is deterministic for a fixed
// clock and safe to call concurrently.
type Scorer struct {
	cfg ScoreConfig
	now func() time.Time
}

// ScorerOption configures a Scorer.
type ScorerOption func(*Scorer)

// WithClock overrides the clock used for the recency factor (for testing).
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) {
		s.now = now
	}
}

// NewScorer creates a Scorer with the given config.
func NewScorer(cfg ScoreConfig, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		cfg: cfg,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns a similarity score in [0, 1] and a reason string. It never
// fails: movies without a usable id score (0, "Invalid movie data"), and
// any internal fault is caught at this boundary and scores
// (0, "Error calculating similarity").
func (s *Scorer) Score(subject, candidate model.Movie) (score float64, reason string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("scorer fault",
				zap.Int("subject_id", subject.ID),
				zap.Int("candidate_id", candidate.ID),
				zap.Any("panic", r),
			)
			score, reason = 0, reasonFault
		}
	}()

	if subject.ID <= 0 || candidate.ID <= 0 {
		return 0, reasonInvalid
	}

	shared := intersect(subject.Genres, candidate.Genres)
	genreScore := jaccard(len(shared), len(subject.Genres), len(candidate.Genres))

	subjectTokens := tokenSet(subject.Overview)
	candidateTokens := tokenSet(candidate.Overview)
	overviewScore := jaccard(countShared(subjectTokens, candidateTokens), len(subjectTokens), len(candidateTokens))

	popularityScore := candidate.Popularity / s.cfg.PopularityCeiling
	if popularityScore > 1 {
		popularityScore = 1
	}

	recencyScore := s.recency(candidate.ReleaseDate)

	score = s.cfg.GenreWeight*genreScore +
		s.cfg.OverviewWeight*overviewScore +
		s.cfg.PopularityWeight*popularityScore +
		s.cfg.RecencyWeight*recencyScore

	// Near genre-identical twins should not rank as if they were diverse
	// matches.
	if len(shared) >= s.cfg.NearDuplicateMinShared &&
		len(subject.Genres) <= s.cfg.NearDuplicateMaxGenres &&
		len(candidate.Genres) <= s.cfg.NearDuplicateMaxGenres {
		score -= s.cfg.NearDuplicatePenalty
		if score < 0 {
			score = 0
		}
	}

	if countShared(tokenSet(subject.Title), tokenSet(candidate.Title)) >= s.cfg.TitleOverlapMinWords {
		score -= s.cfg.TitleOverlapPenalty
		if score < 0 {
			score = 0
		}
	}

	// Final clamp. The penalty branches floor at 0 individually, but a
	// hostile candidate (negative or NaN popularity) can drive the weighted
	// sum itself below 0, or poison it entirely.
	if math.IsNaN(score) || score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score, s.reason(shared, overviewScore, recencyScore)
}

// recency maps a release date to [0, 1]: 1 for the current year, fading
// linearly to 0 over the configured horizon. Missing or unparsable dates
// score 0.
func (s *Scorer) recency(releaseDate string) float64 {
	year := releaseYear(releaseDate)
	if year == 0 {
		return 0
	}
	age := float64(s.now().Year() - year)
	r := 1 - age/s.cfg.RecencyHorizonYears
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// reason builds the ordered justification string.
func (s *Scorer) reason(sharedGenres []string, overviewScore, recencyScore float64) string {
	var parts []string

	if len(sharedGenres) > 0 {
		display := sharedGenres
		if len(display) > s.cfg.MaxReasonGenres {
			display = display[:s.cfg.MaxReasonGenres]
		}
		caser := cases.Title(language.English)
		names := make([]string, len(display))
		for i, g := range display {
			names[i] = caser.String(g)
		}
		parts = append(parts, "Shares genres: "+strings.Join(names, ", "))
	}

	if overviewScore > s.cfg.OverviewReasonThreshold {
		parts = append(parts, "Similar themes")
	}

	if recencyScore > s.cfg.RecencyReasonThreshold {
		parts = append(parts, "Recent release")
	}

	if len(parts) == 0 {
		return reasonFallback
	}
	return strings.Join(parts, "; ")
}

// jaccard computes |A∩B| / |A∪B| with the union floored at 1 so empty
// sets score 0 instead of dividing by zero.
func jaccard(shared, sizeA, sizeB int) float64 {
	union := sizeA + sizeB - shared
	if union < 1 {
		union = 1
	}
	return float64(shared) / float64(union)
}

// intersect returns the elements of a also present in b, preserving a's
// order. Inputs are the normalizer's deduplicated genre sets.
func intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	var shared []string
	for _, v := range a {
		if _, ok := inB[v]; ok {
			shared = append(shared, v)
		}
	}
	return shared
}

func countShared(a, b map[string]struct{}) int {
	n := 0
	for v := range a {
		if _, ok := b[v]; ok {
			n++
		}
	}
	return n
}

// tokenSet splits text into a set of lowercase whitespace-separated tokens.
func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// releaseYear extracts the year from an ISO date string, or 0 when the
// date is missing or unparsable.
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}
