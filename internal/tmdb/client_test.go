package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavy/internal/cache"
	"wavy/pkg/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeProvider serves canned JSON per path and language and counts requests
type fakeProvider struct {
	t      *testing.T
	mu     sync.Mutex
	hits   map[string]int
	total  atomic.Int64
	fail   atomic.Bool
	routes map[string]func(lang string) (int, string)
}

func newFakeProvider(t *testing.T) *fakeProvider {
	return &fakeProvider{
		t:      t,
		hits:   make(map[string]int),
		routes: make(map[string]func(lang string) (int, string)),
	}
}

func (p *fakeProvider) handle(path string, fn func(lang string) (int, string)) {
	p.routes[path] = fn
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.total.Add(1)
	p.mu.Lock()
	p.hits[r.URL.Path]++
	p.mu.Unlock()

	if p.fail.Load() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status_message":"service offline"}`))
		return
	}

	fn, ok := p.routes[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status_message":"The resource you requested could not be found."}`))
		return
	}
	status, body := fn(r.URL.Query().Get("language"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (p *fakeProvider) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func setupClient(t *testing.T, provider *fakeProvider) (*Client, *fakeClock) {
	t.Helper()

	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	store, err := cache.NewMemoryStore(cache.DefaultConfig(), cache.WithClock(clock.Now))
	require.NoError(t, err)

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.APIKey = "test-key"

	return New(config, store, zaptest.NewLogger(t), WithClock(clock.Now)), clock
}

const popularPage = `{"page":1,"total_pages":3,"total_results":2,"results":[
	{"id":1,"title":"Filme Um","overview":"Resumo","poster_path":"/p1.jpg","backdrop_path":null,"original_language":"en","genre_ids":[28],"vote_average":7.5},
	{"id":2,"title":"Filme Dois","overview":"","poster_path":null,"backdrop_path":null,"original_language":"fr","genre_ids":[35],"vote_average":6.1}
]}`

func TestFetch_SecondCallWithinTTLUsesCache(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(string) (int, string) { return http.StatusOK, popularPage })
	client, clock := setupClient(t, provider)
	ctx := context.Background()

	params := url.Values{"page": {"1"}}
	first, err := client.Fetch(ctx, "/movie/popular", params)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessNetwork, first.Freshness)

	clock.Advance(59 * time.Minute)

	second, err := client.Fetch(ctx, "/movie/popular", params)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessCached, second.Freshness)
	assert.Equal(t, string(first.Body), string(second.Body))
	assert.Equal(t, 1, provider.count("/movie/popular"))
}

func TestFetch_AfterTTLRefetchesOnce(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(string) (int, string) { return http.StatusOK, popularPage })
	client, clock := setupClient(t, provider)
	ctx := context.Background()

	_, err := client.Fetch(ctx, "/movie/popular", url.Values{"page": {"1"}})
	require.NoError(t, err)

	clock.Advance(time.Hour)

	res, err := client.Fetch(ctx, "/movie/popular", url.Values{"page": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessNetwork, res.Freshness)
	assert.Equal(t, 2, provider.count("/movie/popular"))
}

func TestFetch_StaleFallbackOnFailure(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(string) (int, string) { return http.StatusOK, popularPage })
	client, clock := setupClient(t, provider)
	ctx := context.Background()

	first, err := client.Fetch(ctx, "/movie/popular", nil)
	require.NoError(t, err)

	clock.Advance(3 * time.Hour)
	provider.fail.Store(true)

	res, err := client.Fetch(ctx, "/movie/popular", nil)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessStale, res.Freshness)
	assert.True(t, res.Freshness.Degraded())
	assert.Equal(t, string(first.Body), string(res.Body))
	assert.Equal(t, 2, provider.count("/movie/popular"), "expired entry must trigger one attempt")
}

func TestFetch_FailureWithoutCachePropagates(t *testing.T) {
	provider := newFakeProvider(t)
	provider.fail.Store(true)
	client, _ := setupClient(t, provider)

	_, err := client.Fetch(context.Background(), "/movie/popular", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.Equal(t, "service offline", fetchErr.Message)
}

func TestFetch_MalformedBody(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(string) (int, string) { return http.StatusOK, `{"results": [` })
	client, _ := setupClient(t, provider)

	_, err := client.Fetch(context.Background(), "/movie/popular", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "malformed")
}

func TestFetch_NetworkError(t *testing.T) {
	store, err := cache.NewMemoryStore(nil)
	require.NoError(t, err)
	config := DefaultConfig()
	config.BaseURL = "http://127.0.0.1:1"
	client := New(config, store, zaptest.NewLogger(t))

	_, err = client.Fetch(context.Background(), "/movie/popular", nil)
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFetch_LanguageIsPartOfKey(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(lang string) (int, string) {
		return http.StatusOK, fmt.Sprintf(`{"page":1,"results":[],"lang":%q}`, lang)
	})
	client, _ := setupClient(t, provider)
	ctx := context.Background()

	pt, err := client.Fetch(ctx, "/movie/popular", url.Values{"language": {"pt-BR"}})
	require.NoError(t, err)
	en, err := client.Fetch(ctx, "/movie/popular", url.Values{"language": {"en-US"}})
	require.NoError(t, err)
	unsupported, err := client.Fetch(ctx, "/movie/popular", url.Values{"language": {"de-DE"}})
	require.NoError(t, err)

	assert.Contains(t, string(pt.Body), `"pt-BR"`)
	assert.Contains(t, string(en.Body), `"en-US"`)
	assert.Equal(t, models.FreshnessCached, unsupported.Freshness, "unsupported language falls back to the default")
	assert.Equal(t, 2, provider.count("/movie/popular"))
}

func TestFetch_ConcurrentMissesShareOneRequest(t *testing.T) {
	provider := newFakeProvider(t)
	release := make(chan struct{})
	provider.handle("/movie/popular", func(string) (int, string) {
		<-release
		return http.StatusOK, popularPage
	})
	client, _ := setupClient(t, provider)

	var wg sync.WaitGroup
	bodies := make([]string, 8)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := client.Fetch(context.Background(), "/movie/popular", nil)
			if assert.NoError(t, err) {
				bodies[i] = string(res.Body)
			}
		}(i)
	}

	require.Eventually(t, func() bool { return provider.count("/movie/popular") == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, 1, provider.count("/movie/popular"))
	for _, b := range bodies {
		assert.Equal(t, bodies[0], b)
	}
}

func TestFetch_CancelledCallerDoesNotAbortSharedRequest(t *testing.T) {
	provider := newFakeProvider(t)
	release := make(chan struct{})
	provider.handle("/movie/popular", func(string) (int, string) {
		<-release
		return http.StatusOK, popularPage
	})
	client, _ := setupClient(t, provider)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Fetch(first, "/movie/popular", nil)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return provider.count("/movie/popular") == 1 }, time.Second, 5*time.Millisecond)

	type outcome struct {
		res *Result
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := client.Fetch(context.Background(), "/movie/popular", nil)
		second <- outcome{res, err}
	}()

	cancel()
	err := <-firstErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	time.Sleep(20 * time.Millisecond)
	close(release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, models.FreshnessNetwork, got.res.Freshness)
	assert.Equal(t, 1, provider.count("/movie/popular"))

	cached, err := client.Fetch(context.Background(), "/movie/popular", nil)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessCached, cached.Freshness)
	assert.Equal(t, 1, provider.count("/movie/popular"))
}

func TestFetch_InvalidResultsShapeIsNotCached(t *testing.T) {
	provider := newFakeProvider(t)
	var broken atomic.Bool
	provider.handle("/movie/popular", func(string) (int, string) {
		if broken.Load() {
			return http.StatusOK, `{"page":1,"results":{}}`
		}
		return http.StatusOK, popularPage
	})
	client, clock := setupClient(t, provider)
	ctx := context.Background()

	good, err := client.Fetch(ctx, "/movie/popular", nil)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	broken.Store(true)

	res, err := client.Fetch(ctx, "/movie/popular", nil)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessStale, res.Freshness)
	assert.Equal(t, string(good.Body), string(res.Body))

	again, err := client.Fetch(ctx, "/movie/popular", nil)
	require.NoError(t, err)
	assert.Equal(t, models.FreshnessStale, again.Freshness, "invalid body must not replace the entry")
	assert.Equal(t, 3, provider.count("/movie/popular"))
}

func TestFetch_InvalidResultsShapeWithoutCacheFails(t *testing.T) {
	provider := newFakeProvider(t)
	provider.handle("/movie/popular", func(string) (int, string) { return http.StatusOK, `{"results":"none"}` })
	client, _ := setupClient(t, provider)

	_, err := client.Fetch(context.Background(), "/movie/popular", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "malformed list payload")
}

func TestCacheKey_IsDeterministic(t *testing.T) {
	a := CacheKey("/discover/movie", url.Values{"with_genres": {"28"}, "page": {"1"}, "language": {"pt-BR"}})
	b := CacheKey("/discover/movie", url.Values{"language": {"pt-BR"}, "page": {"1"}, "with_genres": {"28"}})
	assert.Equal(t, a, b)
	assert.Equal(t, "tmdb:/discover/movie?language=pt-BR&page=1&with_genres=28", a)
}

func TestLanguage(t *testing.T) {
	client := New(DefaultConfig(), nil, zaptest.NewLogger(t))
	assert.Equal(t, "en-US", client.Language("en-us"))
	assert.Equal(t, "pt-BR", client.Language(""))
	assert.Equal(t, "pt-BR", client.Language("ja-JP"))
}

func decodePage(t *testing.T, res *Result) models.CatalogPage {
	t.Helper()
	var page models.CatalogPage
	require.NoError(t, json.Unmarshal(res.Body, &page))
	return page
}
