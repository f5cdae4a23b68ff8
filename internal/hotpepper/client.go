// Package hotpepper is a client for the Recruit HotPepper gourmet and genre
// web APIs. Each call is a single GET with an explicit timeout; failures are
// reported as errors wrapping errors.ErrSearchUnavailable and are never retried.
package hotpepper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/corpix/uarand"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/singleflight"

	domerrors "github.com/garyellow/gourmet-linebot-go/internal/errors"
	"github.com/garyellow/gourmet-linebot-go/internal/logger"
	"github.com/garyellow/gourmet-linebot-go/internal/metrics"
	"github.com/garyellow/gourmet-linebot-go/internal/sliceutil"
)

// Endpoint names used in metrics, logs and errors.
const (
	EndpointGourmet = "gourmet"
	EndpointGenre   = "genre"
)

const (
	// MaxGenres is the most genres that fit in one LINE quick reply.
	MaxGenres = 13

	// MaxCount is the largest count the gourmet endpoint accepts.
	MaxCount = 100

	defaultTimeout   = 5 * time.Second
	maxResponseBytes = 4 << 20
	genreFlightKey   = "genre"
)

// Config configures a Client.
type Config struct {
	APIKey     string
	GourmetURL string
	GenreURL   string
	Timeout    time.Duration
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	HTTPClient *http.Client // Optional; built from Timeout when nil
}

// Client calls the HotPepper APIs. It is safe for concurrent use and is meant
// to be constructed once per process.
type Client struct {
	apiKey     string
	gourmetURL string
	genreURL   string
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *logger.Logger
	genres     singleflight.Group
	shuffle    func(n int, swap func(i, j int))
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: cfg.Timeout,
			},
		}
	}
	return &Client{
		apiKey:     cfg.APIKey,
		gourmetURL: cfg.GourmetURL,
		genreURL:   cfg.GenreURL,
		httpClient: httpClient,
		timeout:    cfg.Timeout,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
		shuffle:    rand.Shuffle,
	}
}

// SearchRestaurants queries the gourmet endpoint with params, requesting at
// most limit shops. Shops are returned in API order.
func (c *Client) SearchRestaurants(ctx context.Context, params *Params, limit int) (*SearchResult, error) {
	limit = max(1, min(limit, MaxCount))

	var resp gourmetResponse
	if err := c.getJSON(ctx, EndpointGourmet, buildURL(c.gourmetURL, c.apiKey, limit, params), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results.Error) > 0 {
		return nil, c.apiFailure(EndpointGourmet, resp.Results.Error[0])
	}

	shops := resp.Results.Shop
	if len(shops) > limit {
		shops = shops[:limit]
	}
	c.metrics.RecordSearchResults(EndpointGourmet, len(shops))

	return &SearchResult{
		ResultsAvailable: int(resp.Results.ResultsAvailable),
		ResultsReturned:  int(resp.Results.ResultsReturned),
		Shops:            shops,
	}, nil
}

// SearchGenres returns the genre master list (unique codes, blank codes
// dropped), optionally shuffled, truncated
// to limit (capped at MaxGenres; limit <= 0 means MaxGenres).
// Concurrent calls share one in-flight request.
func (c *Client) SearchGenres(ctx context.Context, shuffle bool, limit int) ([]Genre, error) {
	if limit <= 0 || limit > MaxGenres {
		limit = MaxGenres
	}

	ch := c.genres.DoChan(genreFlightKey, func() (any, error) {
		// Detached so one canceled caller does not fail the others
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return c.fetchGenres(fetchCtx)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, domerrors.NewAPIError(EndpointGenre, 0, ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	if res.Shared {
		c.metrics.RecordSingleflightDedup(genreFlightKey)
	}

	// Copy before reordering: the slice is shared between callers
	all := res.Val.([]Genre)
	genres := make([]Genre, len(all))
	copy(genres, all)
	if shuffle {
		c.shuffle(len(genres), func(i, j int) { genres[i], genres[j] = genres[j], genres[i] })
	}
	if len(genres) > limit {
		genres = genres[:limit]
	}
	return genres, nil
}

func (c *Client) fetchGenres(ctx context.Context) ([]Genre, error) {
	var resp genreResponse
	if err := c.getJSON(ctx, EndpointGenre, buildURL(c.genreURL, c.apiKey, 0, nil), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results.Error) > 0 {
		return nil, c.apiFailure(EndpointGenre, resp.Results.Error[0])
	}
	genres := sliceutil.UniqueBy(resp.Results.Genre, func(g Genre) string { return g.Code })
	c.metrics.RecordSearchResults(EndpointGenre, len(genres))
	return genres, nil
}

func (c *Client) apiFailure(endpoint string, e apiError) error {
	return domerrors.NewAPIError(endpoint, http.StatusOK, fmt.Errorf("api error %d: %s", e.Code, e.Message))
}

// getJSON performs one GET and decodes the JSON body into out.
// Every outcome is recorded in metrics; failures become *errors.APIError.
func (c *Client) getJSON(ctx context.Context, endpoint, rawURL string, out any) (err error) {
	start := time.Now()
	status := "success"
	defer func() {
		if err != nil {
			status = classify(err)
			c.logger.WithModule("hotpepper").
				WithError(err).
				WithField("endpoint", endpoint).
				WithField("url", redactURL(rawURL)).
				WarnContext(ctx, "Search API request failed")
		}
		c.metrics.RecordSearchRequest(endpoint, status, time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return domerrors.NewAPIError(endpoint, 0, fmt.Errorf("failed to create request: %w", stripURL(err)))
	}
	req.Header.Set("User-Agent", uarand.GetRandom())
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domerrors.NewAPIError(endpoint, 0, fmt.Errorf("request failed: %w", stripURL(err)))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return domerrors.NewAPIError(endpoint, resp.StatusCode, fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, gzErr := gzip.NewReader(resp.Body)
		if gzErr != nil {
			return domerrors.NewAPIError(endpoint, resp.StatusCode, fmt.Errorf("failed to decompress gzip: %w", gzErr))
		}
		defer func() { _ = gz.Close() }()
		body = gz
	}

	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(out); err != nil {
		return domerrors.NewAPIError(endpoint, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// stripURL drops the request URL (which carries the API key) from *url.Error.
func stripURL(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}

func classify(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	return "error"
}
