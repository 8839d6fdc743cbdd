package recommend

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/recon-hq/recon/internal/model"
	"github.com/recon-hq/recon/internal/normalize"
	"github.com/recon-hq/recon/pkg/tmdb"
)

// Candidate-pool fetch retry budget. Looser than the client default: the
// popular endpoint is on the critical path and higher-traffic upstream.
const poolRetries = 2

// Config controls pipeline behavior.
type Config struct {
	// MaxResults bounds the ranked list. Default 8.
	MaxResults int `mapstructure:"max_results"`
	// Concurrency bounds the candidate-enrichment fan-out. Default 4.
	Concurrency int `mapstructure:"concurrency"`
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:  DefaultMaxResults,
		Concurrency: 4,
	}
}

// Service orchestrates one recommendation request: fetch the subject
// movie, fetch a candidate pool, enrich and score each candidate, rank.
// Stateless across requests.
type Service struct {
	client tmdb.Client
	scorer *Scorer
	cfg    Config
}

// NewService creates a recommendation Service.
func NewService(client tmdb.Client, scorer *Scorer, cfg Config) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &Service{
		client: client,
		scorer: scorer,
		cfg:    cfg,
	}
}

// Movie fetches and normalizes a single movie's details. Errors surface
// per the hard-fail contract (tmdb.ErrNotFound for unknown ids).
func (s *Service) Movie(ctx context.Context, movieID int) (model.Movie, error) {
	raw, err := s.client.MovieDetails(ctx, movieID)
	if err != nil {
		return model.Movie{}, eris.Wrap(err, "recommend: fetch movie")
	}
	return normalize.Movie(raw), nil
}

// Recommend produces the ranked similar-movie list for the subject movie.
// Subject and candidate-pool fetch failures are fatal to the request;
// individual candidate failures only shrink the result set.
func (s *Service) Recommend(ctx context.Context, movieID int) (*model.RecommendationResult, error) {
	subjectRaw, err := s.client.MovieDetails(ctx, movieID)
	if err != nil {
		return nil, eris.Wrap(err, "recommend: fetch subject movie")
	}
	subject := normalize.Movie(subjectRaw)

	poolRaw, err := s.client.PopularMovies(ctx, tmdb.WithMaxRetries(poolRetries))
	if err != nil {
		return nil, eris.Wrap(err, "recommend: fetch candidate pool")
	}
	pool := normalize.Results(poolRaw)

	// Fan out enrichment and scoring. Outcomes land in pool order so the
	// final ranking never depends on completion order; a slot stays nil
	// when its candidate is skipped or dropped.
	outcomes := make([]*model.ScoredCandidate, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)

	for i, entry := range pool {
		if !normalize.HasID(entry) || normalize.ID(entry) == subject.ID {
			continue
		}
		i := i
		candidateID := normalize.ID(entry)
		g.Go(func() error {
			outcomes[i] = s.enrich(gctx, subject, candidateID)
			return nil // a single candidate never aborts the batch
		})
	}
	_ = g.Wait() // workers never return errors

	scored := make([]model.ScoredCandidate, 0, len(outcomes))
	for _, o := range outcomes {
		if o != nil {
			scored = append(scored, *o)
		}
	}

	zap.L().Info("recommendation pipeline complete",
		zap.Int("subject_id", subject.ID),
		zap.Int("pool_size", len(pool)),
		zap.Int("scored", len(scored)),
	)

	return Rank(subject, scored, s.cfg.MaxResults), nil
}

// enrich fetches one candidate's full details and scores it against the
// subject. Returns nil when the candidate is dropped: detail fetch
// degraded, or the enriched record is missing id or title.
func (s *Service) enrich(ctx context.Context, subject model.Movie, candidateID int) *model.ScoredCandidate {
	detail, err := s.client.MovieDetails(ctx, candidateID, tmdb.SoftFail())
	if err != nil {
		// Soft-fail calls degrade instead of erroring; anything else is
		// unexpected but still only costs this candidate.
		zap.L().Warn("candidate enrichment failed",
			zap.Int("candidate_id", candidateID),
			zap.Error(err),
		)
		return nil
	}

	if !normalize.HasID(detail) || !normalize.HasTitle(detail) {
		zap.L().Debug("candidate dropped: incomplete detail",
			zap.Int("candidate_id", candidateID),
		)
		return nil
	}

	candidate := normalize.Movie(detail)
	score, reason := s.scorer.Score(subject, candidate)

	return &model.ScoredCandidate{
		Movie:           candidate,
		SimilarityScore: score,
		Reason:          reason,
	}
}
