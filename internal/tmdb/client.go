// Package tmdb is the metadata retrieval-and-cache facade in front of the
// remote movie catalog API.
package tmdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"wavy/internal/cache"
	"wavy/internal/metrics"
	"wavy/pkg/models"
)

const maxBodyBytes = 8 << 20

// Config configuration for the metadata client
type Config struct {
	BaseURL            string             `mapstructure:"base_url"`
	ImageBaseURL       string             `mapstructure:"image_base_url"`
	APIKey             string             `mapstructure:"api_key"`
	DefaultLanguage    string             `mapstructure:"default_language"`
	SupportedLanguages []string           `mapstructure:"supported_languages"`
	Timeout            time.Duration      `mapstructure:"timeout"`
	Localization       LocalizationPolicy `mapstructure:"localization"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://api.themoviedb.org/3",
		ImageBaseURL:       "https://image.tmdb.org/t/p/",
		DefaultLanguage:    "pt-BR",
		SupportedLanguages: []string{"pt-BR", "en-US"},
		Timeout:            10 * time.Second,
		Localization:       DefaultLocalizationPolicy(),
	}
}

// Result is a payload returned by Fetch along with where it came from
type Result struct {
	Body      json.RawMessage
	Freshness models.Freshness
	StoredAt  time.Time
}

// Decode unmarshals the payload into v
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode payload: %w", err)
	}
	return nil
}

// Option customises a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithClock overrides time.Now for date-derived queries
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// Client fetches catalog data through the cache store
type Client struct {
	config     *Config
	httpClient *http.Client
	cache      cache.Store
	logger     *zap.Logger
	policy     *policyMatcher
	now        func() time.Time

	// concurrent misses on the same key share one upstream call
	inflight singleflight.Group
}

// New creates a metadata client
func New(config *Config, store cache.Store, logger *zap.Logger, opts ...Option) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		cache:      store,
		logger:     logger,
		policy:     newPolicyMatcher(config.Localization),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Language returns lang when supported, otherwise the default language
func (c *Client) Language(lang string) string {
	for _, supported := range c.config.SupportedLanguages {
		if strings.EqualFold(supported, lang) {
			return supported
		}
	}
	return c.config.DefaultLanguage
}

// CacheKey derives the deterministic cache key of a request. url.Values
// encodes its keys in sorted order.
func CacheKey(endpoint string, params url.Values) string {
	return "tmdb:" + endpoint + "?" + params.Encode()
}

// Fetch returns the payload of endpoint, serving fresh cache entries without
// a network call and falling back to a stale entry when upstream fails.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) (*Result, error) {
	params = cloneValues(params)
	params.Set("language", c.Language(params.Get("language")))
	key := CacheKey(endpoint, params)

	if entry, ok := c.cache.Get(ctx, key); ok && entry.IsFresh(c.cache.Now(), c.cache.TTL()) {
		metrics.CacheLookups.WithLabelValues("fresh").Inc()
		c.logger.Debug("cache hit", zap.String("key", key))
		return &Result{Body: entry.Value, Freshness: models.FreshnessCached, StoredAt: entry.StoredAt}, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()
	c.logger.Debug("cache miss, requesting upstream", zap.String("endpoint", endpoint))

	// The shared call outlives any single caller; each caller only stops waiting.
	ch := c.inflight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := c.detach(ctx)
		defer cancel()

		body, err := c.fetchEnriched(fetchCtx, endpoint, params)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Put(fetchCtx, key, body); err != nil {
			c.logger.Warn("failed to store cache entry", zap.Error(err), zap.String("key", key))
		}
		return body, nil
	})

	var (
		v      interface{}
		err    error
		shared bool
	)
	select {
	case res := <-ch:
		v, err, shared = res.Val, res.Err, res.Shared
	case <-ctx.Done():
		err = &FetchError{Endpoint: endpoint, Message: "request cancelled", Err: ctx.Err()}
	}
	if err != nil {
		if entry, ok := c.cache.Get(ctx, key); ok {
			metrics.CacheLookups.WithLabelValues("stale").Inc()
			c.logger.Warn("serving stale cache entry",
				zap.String("endpoint", endpoint),
				zap.Duration("age", entry.Age(c.cache.Now())),
				zap.Error(err))
			return &Result{Body: entry.Value, Freshness: models.FreshnessStale, StoredAt: entry.StoredAt}, nil
		}
		c.logger.Error("fetch failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, err
	}

	if shared {
		c.logger.Debug("shared in-flight request", zap.String("key", key))
	}
	return &Result{Body: v.(json.RawMessage), Freshness: models.FreshnessNetwork, StoredAt: c.cache.Now()}, nil
}

// detach returns a context that ignores the caller's cancellation but keeps
// its values, bounded by the configured timeout.
func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if c.config.Timeout <= 0 {
		return context.WithCancel(base)
	}
	return context.WithTimeout(base, c.config.Timeout)
}

// fetchEnriched performs the primary request and applies the localization
// overlay. The result is re-encoded so cached and live bodies are identical.
func (c *Client) fetchEnriched(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	doc, err := c.getDocument(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if err := validateShape(doc); err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "malformed list payload", Err: err}
	}

	c.localize(ctx, endpoint, params, doc)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "failed to encode response", Err: err}
	}
	return body, nil
}

func (c *Client) getDocument(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	raw, err := c.get(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil || doc == nil {
		if err == nil {
			err = errors.New("empty document")
		}
		return nil, &FetchError{Endpoint: endpoint, Message: "malformed response body", Err: err}
	}
	return doc, nil
}

// validateShape rejects list documents whose results field is not an array
func validateShape(doc map[string]any) error {
	results, ok := doc["results"]
	if !ok {
		return nil
	}
	if _, ok := results.([]any); !ok {
		return fmt.Errorf("results is %T, want array", results)
	}
	return nil
}

// get issues one GET against the provider and returns the raw body
func (c *Client) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := cloneValues(params)
	if c.config.APIKey != "" {
		query.Set("api_key", c.config.APIKey)
	}
	target := strings.TrimRight(c.config.BaseURL, "/") + endpoint + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: endpoint, Message: "failed to create request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("network_error").Inc()
		return nil, &FetchError{Endpoint: endpoint, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues("network_error").Inc()
		return nil, &FetchError{Endpoint: endpoint, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequests.WithLabelValues("bad_status").Inc()
		return nil, &FetchError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: statusMessage(body, resp.Status)}
	}

	metrics.UpstreamRequests.WithLabelValues("ok").Inc()
	return body, nil
}

// statusMessage extracts the provider's status_message when present
func statusMessage(body []byte, fallback string) string {
	var payload struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		return payload.StatusMessage
	}
	return fallback
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+1)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}
