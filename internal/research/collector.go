// Package research gathers short destination summaries from a web search
// provider. Failures never reach the caller; they degrade to placeholder text.
package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/PrathmeshSose/ai-travel-agent/internal/cache"
	"github.com/PrathmeshSose/ai-travel-agent/internal/metrics"
	"github.com/PrathmeshSose/ai-travel-agent/internal/model"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	DefaultEngine  = "google"
	DefaultLimit   = 6

	UnavailableText = "Search unavailable."
	NoResultsText   = "No search results found."

	queryKeywords = "travel guide attractions restaurants"
	cacheNS       = "research"
)

// PlaceholderText is returned when no search credential is configured.
func PlaceholderText(destination string) string {
	return fmt.Sprintf("Basic travel information for %s. Add SerpAPI key for detailed research.", destination)
}

// Options configures a Collector.
type Options struct {
	BaseURL  string
	Engine   string
	Limit    int
	Timeout  time.Duration
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   zerolog.Logger
}

// Collector queries a SerpAPI-compatible endpoint.
type Collector struct {
	client   *resty.Client
	engine   string
	limit    int
	cache    cache.Cache
	cacheTTL time.Duration
	log      zerolog.Logger
}

// New builds a Collector. Zero-valued options fall back to the public
// SerpAPI endpoint, the google engine, six results and a 10s timeout.
func New(opts Options) *Collector {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Engine == "" {
		opts.Engine = DefaultEngine
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(opts.Timeout)

	return &Collector{
		client:   c,
		engine:   opts.Engine,
		limit:    opts.Limit,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		log:      opts.Logger,
	}
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
	Error          string          `json:"error,omitempty"`
}

type organicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Search returns research text and citations for destination. With an empty
// credential it returns placeholder text without touching the network.
func (c *Collector) Search(ctx context.Context, destination, credential string) model.ResearchResult {
	if strings.TrimSpace(credential) == "" {
		metrics.ResearchLookups.WithLabelValues("no_key").Inc()
		return model.ResearchResult{Text: PlaceholderText(destination), Citations: []string{}}
	}

	key := cache.Key(cacheNS, c.engine, strconv.Itoa(c.limit), destination, credential)
	if c.cache != nil {
		var cached model.ResearchResult
		err := cache.GetJSON(ctx, c.cache, key, &cached)
		if err == nil {
			metrics.ResearchLookups.WithLabelValues("cached").Inc()
			return cached
		}
		if !errors.Is(err, cache.ErrMiss) {
			c.log.Warn().Err(err).Msg("research cache read failed")
		}
	}

	results, err := c.query(ctx, destination, credential)
	if err != nil {
		c.log.Warn().Err(err).Str("destination", destination).Msg("search unavailable")
		metrics.ResearchLookups.WithLabelValues("unavailable").Inc()
		return model.ResearchResult{Text: UnavailableText, Citations: []string{}}
	}

	out := summarize(results)
	if len(results) == 0 {
		metrics.ResearchLookups.WithLabelValues("empty").Inc()
	} else {
		metrics.ResearchLookups.WithLabelValues("ok").Inc()
	}

	if c.cache != nil {
		if err := cache.SetJSON(ctx, c.cache, key, out, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Msg("research cache write failed")
		}
	}
	return out
}

func (c *Collector) query(ctx context.Context, destination, credential string) ([]organicResult, error) {
	started := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"engine":  c.engine,
			"q":       fmt.Sprintf("%s %s", destination, queryKeywords),
			"api_key": credential,
			"num":     strconv.Itoa(c.limit),
		}).
		Get("/search")
	metrics.ProviderLatency.WithLabelValues("search").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(resp.Body(), &sr); err != nil {
		return nil, fmt.Errorf("decode search response (status %d): %w", resp.StatusCode(), err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode(), sr.Error)
	}
	if sr.Error != "" && len(sr.OrganicResults) == 0 {
		// SerpAPI reports "no results" through the error field as well.
		if strings.Contains(strings.ToLower(sr.Error), "hasn't returned any results") {
			return nil, nil
		}
		return nil, fmt.Errorf("search provider: %s", sr.Error)
	}

	results := sr.OrganicResults
	if len(results) > c.limit {
		results = results[:c.limit]
	}
	return results, nil
}

func summarize(results []organicResult) model.ResearchResult {
	if len(results) == 0 {
		return model.ResearchResult{Text: NoResultsText, Citations: []string{}}
	}
	lines := make([]string, 0, len(results))
	citations := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("• %s: %s", r.Title, r.Snippet))
		citations = append(citations, fmt.Sprintf("- [%s](%s)", r.Title, r.Link))
	}
	return model.ResearchResult{Text: strings.Join(lines, "\n"), Citations: citations}
}
