package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavy/pkg/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]any
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rec := recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &rec.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	if f.handler != nil {
		f.handler(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

func (f *fakeBackend) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func setupClient(t *testing.T, fb *fakeBackend) *Client {
	server := httptest.NewServer(fb)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.BaseURL = server.URL + "/"
	config.RetryMax = 0
	config.Timeout = 2 * time.Second
	return New(config, zaptest.NewLogger(t))
}

func TestNew_DisabledWithoutBaseURL(t *testing.T) {
	client := New(DefaultConfig(), zaptest.NewLogger(t))
	assert.Nil(t, client)
	assert.False(t, client.Enabled())

	err := client.Health(context.Background())
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Nil(t, client.Mirror(CollectionFavorites))
}

func TestClient_Login(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"sessionToken":"tok-1","user":{"id":"42","name":"Ana","email":"ana@example.com"}}`))
	}}
	client := setupClient(t, fb)

	resp, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.SessionToken)

	session := resp.Session()
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "42", session.UserID)

	req := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/auth/login", req.Path)
	assert.Equal(t, "ana@example.com", req.Body["email"])
	assert.Empty(t, req.Auth)
}

func TestClient_VerifySessionEscapesToken(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true,"user":{"id":"7"}}`))
	}}
	client := setupClient(t, fb)

	resp, err := client.VerifySession(context.Background(), "a b&c")
	require.NoError(t, err)
	assert.True(t, resp.Valid)
	assert.Equal(t, "/auth/verify", fb.last().Path)
	assert.Equal(t, "sessionToken=a+b%26c", fb.last().Query)
}

func TestClient_ErrorMessage(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusUnauthorized, `{"message":"Credenciais inválidas"}`, "Credenciais inválidas"},
		{"no body", http.StatusNotFound, ``, "HTTP error! status: 404"},
		{"non json", http.StatusBadRequest, `oops`, "HTTP error! status: 400"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}}
			client := setupClient(t, fb)

			err := client.ChangePassword(context.Background(), "tok", "old", "new")
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"id":"42","name":"Ana"}`))
	}}
	server := httptest.NewServer(fb)
	defer server.Close()

	config := DefaultConfig()
	config.BaseURL = server.URL
	config.RetryMax = 2
	client := New(config, zaptest.NewLogger(t))

	user, err := client.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "Bearer tok", fb.last().Auth)
}

func TestMirror_Favorites(t *testing.T) {
	fb := &fakeBackend{}
	client := setupClient(t, fb)
	mirror := client.Mirror(CollectionFavorites)
	require.NotNil(t, mirror)

	entry := models.CollectionEntry{ItemID: 550, Title: "Fight Club", AddedAt: time.Now()}
	require.NoError(t, mirror.Add(context.Background(), "tok", "42", entry))

	req := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/favorites", req.Path)
	assert.Equal(t, "42", req.Body["userId"])
	movie, ok := req.Body["movie"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(550), movie["id"])

	require.NoError(t, mirror.Remove(context.Background(), "tok", "42", 550))
	assert.Equal(t, http.MethodDelete, fb.last().Method)
	assert.Equal(t, "/favorites/42/550", fb.last().Path)
}

func TestMirror_ListFavorites(t *testing.T) {
	fb := &fakeBackend{handler: func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":550,"title":"Fight Club"},{"movie_id":603,"title":"The Matrix"}]`))
	}}
	client := setupClient(t, fb)

	entries, err := client.Mirror(CollectionFavorites).List(context.Background(), "tok", "42")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, fb.last().Method)
	assert.Equal(t, "/favorites/42", fb.last().Path)
	require.Len(t, entries, 2)
	assert.Equal(t, "42", entries[0].OwnerID)
}

func TestMirror_Library(t *testing.T) {
	fb := &fakeBackend{}
	client := setupClient(t, fb)
	mirror := client.Mirror(CollectionLibrary)

	require.NoError(t, mirror.Add(context.Background(), "tok", "42", models.CollectionEntry{ItemID: 13}))
	assert.Equal(t, "/library", fb.last().Path)
	assert.Equal(t, "Bearer tok", fb.last().Auth)
	_, hasUser := fb.last().Body["userId"]
	assert.False(t, hasUser)

	require.NoError(t, mirror.Remove(context.Background(), "tok", "42", 13))
	assert.Equal(t, "/library/13", fb.last().Path)
}

func TestMirror_ContinueWatching(t *testing.T) {
	fb := &fakeBackend{}
	client := setupClient(t, fb)
	mirror := client.Mirror(CollectionContinueWatching)

	entry := models.CollectionEntry{ItemID: 603, ProgressMinutes: 30, TotalMinutes: 120}
	require.NoError(t, mirror.Add(context.Background(), "tok", "42", entry))
	req := fb.last()
	assert.Equal(t, "/continue-watching", req.Path)
	assert.Equal(t, float64(603), req.Body["movieId"])
	assert.Equal(t, float64(30), req.Body["progress"])

	before := len(fb.requests)
	require.NoError(t, mirror.Remove(context.Background(), "tok", "42", 603))
	assert.Len(t, fb.requests, before)

	_, err := mirror.List(context.Background(), "tok", "42")
	assert.Error(t, err)
	assert.Len(t, fb.requests, before)
}

func TestMirror_UnknownKind(t *testing.T) {
	client := setupClient(t, &fakeBackend{})
	assert.Nil(t, client.Mirror("watchlist"))
}
