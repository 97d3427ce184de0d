package tmdb

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"wavy/internal/metrics"
)

// LocalizationPolicy decides which items get a second lookup in an alternate
// locale to patch incomplete localized text upstream.
type LocalizationPolicy struct {
	Enabled       bool     `mapstructure:"enabled"`
	Languages     []string `mapstructure:"languages"`
	Countries     []string `mapstructure:"countries"`
	Locale        string   `mapstructure:"locale"`
	MaxConcurrent int      `mapstructure:"max_concurrent"`
}

// DefaultLocalizationPolicy returns the default trigger sets
func DefaultLocalizationPolicy() LocalizationPolicy {
	return LocalizationPolicy{
		Enabled:       true,
		Languages:     []string{"ja", "ko", "zh", "th", "hi", "ta", "te"},
		Countries:     []string{"JP", "KR", "CN", "TH", "IN", "TW", "HK"},
		Locale:        "en-US",
		MaxConcurrent: 8,
	}
}

// overlayFields are copied from the alternate-locale record when non-empty
var overlayFields = []string{"title", "name", "overview", "poster_path", "backdrop_path"}

type policyMatcher struct {
	enabled       bool
	languages     map[string]struct{}
	countries     map[string]struct{}
	locale        string
	maxConcurrent int
}

func newPolicyMatcher(p LocalizationPolicy) *policyMatcher {
	m := &policyMatcher{
		enabled:       p.Enabled && p.Locale != "",
		languages:     make(map[string]struct{}, len(p.Languages)),
		countries:     make(map[string]struct{}, len(p.Countries)),
		locale:        p.Locale,
		maxConcurrent: p.MaxConcurrent,
	}
	if m.maxConcurrent <= 0 {
		m.maxConcurrent = 1
	}
	for _, l := range p.Languages {
		m.languages[strings.ToLower(l)] = struct{}{}
	}
	for _, c := range p.Countries {
		m.countries[strings.ToUpper(c)] = struct{}{}
	}
	return m
}

// matches reports whether an item's origin triggers the overlay
func (m *policyMatcher) matches(item map[string]any) bool {
	if lang, ok := item["original_language"].(string); ok {
		if _, hit := m.languages[strings.ToLower(lang)]; hit {
			return true
		}
	}
	if countries, ok := item["origin_country"].([]any); ok {
		for _, c := range countries {
			s, ok := c.(string)
			if !ok {
				continue
			}
			if _, hit := m.countries[strings.ToUpper(s)]; hit {
				return true
			}
		}
	}
	return false
}

// localize applies the overlay to a list document's results or to a single
// item document. Overlay failures keep the original values.
func (c *Client) localize(ctx context.Context, endpoint string, params url.Values, doc map[string]any) {
	if !c.policy.enabled || params.Get("language") == c.policy.locale {
		return
	}

	if results, ok := doc["results"].([]any); ok {
		g := new(errgroup.Group)
		g.SetLimit(c.policy.maxConcurrent)

		for _, r := range results {
			item, ok := r.(map[string]any)
			if !ok || !c.policy.matches(item) {
				continue
			}
			id := itemID(item)
			if id == "" {
				continue
			}
			detail := detailEndpoint(endpoint, item, id)
			g.Go(func() error {
				c.overlay(ctx, item, detail, url.Values{})
				return nil
			})
		}
		_ = g.Wait()
		return
	}

	if itemID(doc) != "" && c.policy.matches(doc) {
		c.overlay(ctx, doc, endpoint, params)
	}
}

// overlay fetches endpoint in the policy locale and copies its text and
// artwork fields onto target
func (c *Client) overlay(ctx context.Context, target map[string]any, endpoint string, params url.Values) {
	alt := cloneValues(params)
	alt.Set("language", c.policy.locale)

	raw, err := c.get(ctx, endpoint, alt)
	if err != nil {
		metrics.LocalizationOverlays.WithLabelValues("failed").Inc()
		c.logger.Warn("localization lookup failed, keeping original",
			zap.String("endpoint", endpoint), zap.Error(err))
		return
	}

	var localized map[string]any
	if err := json.Unmarshal(raw, &localized); err != nil {
		metrics.LocalizationOverlays.WithLabelValues("failed").Inc()
		c.logger.Warn("localization lookup returned malformed body",
			zap.String("endpoint", endpoint), zap.Error(err))
		return
	}

	for _, field := range overlayFields {
		value, ok := localized[field].(string)
		if !ok || value == "" {
			continue
		}
		if field == "title" || field == "name" {
			if _, present := target[field]; !present {
				continue
			}
		}
		target[field] = value
	}
	metrics.LocalizationOverlays.WithLabelValues("applied").Inc()
}

func itemID(item map[string]any) string {
	switch id := item["id"].(type) {
	case json.Number:
		return id.String()
	case string:
		return id
	default:
		return ""
	}
}

// detailEndpoint returns the single-item endpoint for a list entry
func detailEndpoint(listEndpoint string, item map[string]any, id string) string {
	mediaType, _ := item["media_type"].(string)
	if mediaType == "tv" || (mediaType == "" && isSeriesEndpoint(listEndpoint)) {
		return "/tv/" + id
	}
	return "/movie/" + id
}

func isSeriesEndpoint(endpoint string) bool {
	return strings.Contains(endpoint+"/", "/tv/")
}
