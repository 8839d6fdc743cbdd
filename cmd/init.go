package main

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/recon-hq/recon/internal/recommend"
	"github.com/recon-hq/recon/internal/resilience"
	"github.com/recon-hq/recon/pkg/tmdb"
)

// initService wires the TMDB client, scorer, and recommendation service
// from the loaded config.
func initService() (*recommend.Service, tmdb.Client, error) {
	if cfg.TMDB.Key == "" {
		return nil, nil, eris.New("tmdb key not set (RECON_TMDB_KEY or tmdb.key in config.yaml)")
	}

	client := tmdb.NewClient(cfg.TMDB.Key,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithHTTPClient(&http.Client{
			Timeout: cfg.TMDB.Timeout(),
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		}),
		tmdb.WithRetryConfig(resilience.RetryConfig{
			MaxRetries: cfg.TMDB.MaxRetries,
			Delay:      cfg.TMDB.RetryDelay(),
		}),
		tmdb.WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.TMDB.RateLimit), cfg.TMDB.RateBurst)),
	)

	scorer := recommend.NewScorer(cfg.Recommend.Score)

	svc := recommend.NewService(client, scorer, recommend.Config{
		MaxResults:  cfg.Recommend.MaxResults,
		Concurrency: cfg.Recommend.Concurrency,
	})

	return svc, client, nil
}
