package search

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/logger"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/metrics"
	"github.com/IGDTUWCITY/igdtuw-student-hub/internal/model"
)

const (
	serpAPIBaseURL = "https://serpapi.com/search"
	requestedNum   = 15 // asked from the provider
	keptResults    = 10 // kept per query
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// Options configures a SerpClient. Zero values select the defaults.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64 // 0 disables rate limiting
}

// SerpClient queries SerpAPI's Google engine.
// Every failure is logged and reported as an empty result set; Search never
// returns an error so that one bad query cannot abort a sync run.
type SerpClient struct {
	apiKey  string
	baseURL string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	policy  *bluemonday.Policy
	cache   Cache
	metrics *metrics.Metrics
	log     *zap.Logger
}

// NewSerpClient constructs a client with a shared HTTP client.
func NewSerpClient(opts Options, m *metrics.Metrics, log *zap.Logger) *SerpClient {
	if opts.BaseURL == "" {
		opts.BaseURL = serpAPIBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	return &SerpClient{
		apiKey:  opts.APIKey,
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		client:  &http.Client{},
		limiter: limiter,
		policy:  bluemonday.StrictPolicy(),
		metrics: m,
		log:     log.Named("search"),
	}
}

// WithCache enables result caching. It returns c for chaining.
func (c *SerpClient) WithCache(cache Cache) *SerpClient {
	c.cache = cache
	return c
}

// serpResponse mirrors the subset of the SerpAPI response we read.
type serpResponse struct {
	OrganicResults []serpResult `json:"organic_results"`
	Error          string       `json:"error"`
}

type serpResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Search returns up to ten organic results for query.
func (c *SerpClient) Search(ctx context.Context, query string) []model.RawSearchResult {
	log := c.log.With(zap.String("query", query))

	if c.apiKey == "" {
		log.Error("SERPAPI_KEY not set, skipping search")
		c.metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, query); ok {
			log.Debug("search cache hit", zap.Int("results", len(cached)))
			c.metrics.SearchRequestsTotal.WithLabelValues("cache_hit").Inc()
			return cached
		}
	}

	results, err := c.fetch(ctx, query)
	if err != nil {
		log.Error("search failed", zap.Error(err))
		c.metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil
	}

	c.metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	log.Info("search completed", zap.Int("results", len(results)))

	if c.cache != nil {
		c.cache.Set(ctx, query, results)
	}
	return results
}

func (c *SerpClient) fetch(ctx context.Context, query string) ([]model.RawSearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", c.apiKey)
	params.Set("engine", "google")
	params.Set("num", strconv.Itoa(requestedNum))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi returned %d: %s", resp.StatusCode, logger.Truncate(string(body), maxErrorBody))
	}

	var apiResp serpResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if apiResp.Error != "" && len(apiResp.OrganicResults) == 0 {
		// SerpAPI reports "no results" and quota problems in-band.
		return nil, fmt.Errorf("serpapi: %s", apiResp.Error)
	}

	n := min(len(apiResp.OrganicResults), keptResults)
	results := make([]model.RawSearchResult, 0, n)
	for _, r := range apiResp.OrganicResults[:n] {
		results = append(results, model.RawSearchResult{
			Title:   c.clean(r.Title),
			Link:    strings.TrimSpace(r.Link),
			Snippet: c.clean(r.Snippet),
		})
	}
	return results, nil
}

// clean strips markup from provider text and decodes entities.
func (c *SerpClient) clean(s string) string {
	s = c.policy.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
