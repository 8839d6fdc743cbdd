// Package tmdb provides a client for the TMDB movie catalog API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/recon-hq/recon/internal/model"
	"github.com/recon-hq/recon/internal/resilience"
)

// Client defines the catalog API operations used by the recommendation
// pipeline.
type Client interface {
	// MovieDetails fetches full details for one movie, including keyword
	// data.
	MovieDetails(ctx context.Context, id int, opts ...CallOption) (model.RawRecord, error)
	// PopularMovies fetches the first page of currently-popular movies.
	PopularMovies(ctx context.Context, opts ...CallOption) (model.RawRecord, error)
	// SearchMovies searches movies by title.
	SearchMovies(ctx context.Context, query string, opts ...CallOption) (model.RawRecord, error)
}

// CallOption configures a single API call.
type CallOption func(*callOptions)

type callOptions struct {
	softFail   bool
	maxRetries int // -1 means use the client default
}

// SoftFail makes unrecoverable failures on this call yield an empty
// `{"results": []}` sentinel instead of an error. Callers that can
// tolerate partial data use this to avoid cascading failure.
func SoftFail() CallOption {
	return func(o *callOptions) {
		o.softFail = true
	}
}

// WithMaxRetries overrides the number of additional attempts for this call.
func WithMaxRetries(n int) CallOption {
	return func(o *callOptions) {
		o.maxRetries = n
	}
}

// Option configures the TMDB client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithLanguage sets the language passed on list and detail requests.
func WithLanguage(lang string) Option {
	return func(c *httpClient) {
		c.language = lang
	}
}

// WithRetryConfig overrides the default retry behavior.
func WithRetryConfig(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

// WithRateLimiter bounds outbound request rate so candidate fan-out cannot
// overwhelm the upstream. Nil disables limiting.
func WithRateLimiter(lim *rate.Limiter) Option {
	return func(c *httpClient) {
		c.limiter = lim
	}
}

type httpClient struct {
	credential string
	bearer     bool
	baseURL    string
	language   string
	retry      resilience.RetryConfig
	limiter    *rate.Limiter
	http       *http.Client
}

// NewClient creates a TMDB client. The credential is either a v3 API key
// (sent as an api_key query parameter) or a v4 read access token prefixed
// with "Bearer " (sent as an Authorization header); the shape is resolved
// once here.
func NewClient(credential string, opts ...Option) Client {
	c := &httpClient{
		credential: credential,
		bearer:     strings.HasPrefix(strings.ToLower(credential), "bearer "),
		baseURL:    "https://api.themoviedb.org/3",
		language:   "en-US",
		retry:      resilience.DefaultRetryConfig(),
		limiter:    rate.NewLimiter(40, 40),
		http: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) MovieDetails(ctx context.Context, id int, opts ...CallOption) (model.RawRecord, error) {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("append_to_response", "keywords")
	return c.get(ctx, fmt.Sprintf("/movie/%d", id), params, opts)
}

func (c *httpClient) PopularMovies(ctx context.Context, opts ...CallOption) (model.RawRecord, error) {
	params := url.Values{}
	params.Set("language", c.language)
	params.Set("page", "1")
	return c.get(ctx, "/movie/popular", params, opts)
}

func (c *httpClient) SearchMovies(ctx context.Context, query string, opts ...CallOption) (model.RawRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.language)
	params.Set("page", "1")
	params.Set("include_adult", "false")
	return c.get(ctx, "/search/movie", params, opts)
}

type apiResponse struct {
	status int
	body   []byte
}

// get issues one authenticated GET against the catalog API, retrying
// transient failures, and decodes the body into a RawRecord.
func (c *httpClient) get(ctx context.Context, path string, params url.Values, opts []CallOption) (model.RawRecord, error) {
	co := callOptions{maxRetries: -1}
	for _, opt := range opts {
		opt(&co)
	}

	cfg := c.retry
	if co.maxRetries >= 0 {
		cfg.MaxRetries = co.maxRetries
	}
	cfg.OnRetry = resilience.RetryLogger("tmdb", path)

	resp, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (apiResponse, error) {
		return c.attempt(ctx, path, params)
	})
	if err != nil {
		return c.terminal(co, path, err)
	}

	if resp.status == http.StatusNotFound {
		if co.softFail {
			return c.degrade(path, eris.Wrap(ErrNotFound, path))
		}
		return nil, eris.Wrap(ErrNotFound, path)
	}
	if resp.status < 200 || resp.status >= 300 {
		statusErr := &StatusError{Status: resp.status, Body: string(resp.body)}
		if co.softFail {
			return c.degrade(path, statusErr)
		}
		return nil, eris.Wrap(statusErr, path)
	}

	var raw model.RawRecord
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		if co.softFail {
			return c.degrade(path, err)
		}
		return nil, eris.Wrap(ErrMalformed, path)
	}

	return raw, nil
}

// attempt performs a single request. Transient failures (network errors
// and retryable status codes) come back wrapped as TransientError so the
// retry loop keeps going; any other response is final.
func (c *httpClient) attempt(ctx context.Context, path string, params url.Values) (apiResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apiResponse{}, eris.Wrap(err, "tmdb: rate limiter wait")
		}
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	if !c.bearer {
		query.Set("api_key", c.credential)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return apiResponse{}, eris.Wrap(err, "tmdb: create request")
	}
	req.Header.Set("Accept", "application/json")
	if c.bearer {
		req.Header.Set("Authorization", c.credential)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return apiResponse{}, resilience.NewTransientError(eris.Wrap(err, "tmdb: request"), 0)
	}

	body, readErr := io.ReadAll(res.Body)
	_ = res.Body.Close()
	if readErr != nil {
		return apiResponse{}, resilience.NewTransientError(eris.Wrap(readErr, "tmdb: read response body"), 0)
	}

	if resilience.IsTransientHTTPStatus(res.StatusCode) {
		return apiResponse{}, resilience.NewTransientError(
			&StatusError{Status: res.StatusCode, Body: string(body)},
			res.StatusCode,
		)
	}

	return apiResponse{status: res.StatusCode, body: body}, nil
}

// terminal classifies an exhausted-retries error into the upstream error
// taxonomy, or degrades it to the soft-fail sentinel.
func (c *httpClient) terminal(co callOptions, path string, err error) (model.RawRecord, error) {
	if co.softFail {
		return c.degrade(path, err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return nil, eris.Wrap(statusErr, path)
	}
	return nil, eris.Wrap(ErrUnavailable, err.Error())
}

// degrade logs the failure and returns the empty-results sentinel.
func (c *httpClient) degrade(path string, err error) (model.RawRecord, error) {
	zap.L().Warn("tmdb call degraded to empty results",
		zap.String("path", path),
		zap.Error(err),
	)
	return model.EmptyResults(), nil
}
