package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavy/internal/backend"
	"wavy/pkg/models"
)

type fakeVerifier struct {
	users map[string]string
	calls int
}

func (f *fakeVerifier) VerifySession(_ context.Context, token string) (*backend.AuthResponse, error) {
	f.calls++
	id, ok := f.users[token]
	if !ok {
		return nil, &backend.APIError{Status: http.StatusUnauthorized, Message: "invalid session"}
	}
	return &backend.AuthResponse{Valid: true, User: &models.User{ID: id}}, nil
}

type fakeSessions struct {
	sessions map[string]*models.Session
	err      error
}

func (f *fakeSessions) Session(_ context.Context, token string) (*models.Session, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	s, ok := f.sessions[token]
	return s, ok, nil
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken("Bearer "))
	assert.Empty(t, BearerToken(""))
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "42", Token: "tok"})
	id, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "42", id.UserID)
	assert.Equal(t, "tok", Token(ctx))

	_, ok = FromContext(WithIdentity(context.Background(), Identity{}))
	assert.False(t, ok)
}

func TestResolver_LocalSessionFirst(t *testing.T) {
	verifier := &fakeVerifier{users: map[string]string{"tok": "remote"}}
	sessions := &fakeSessions{sessions: map[string]*models.Session{"tok": {Token: "tok", UserID: "local"}}}
	r := NewResolver(verifier, sessions, zaptest.NewLogger(t))

	id, ok := r.Resolve(context.Background(), "tok", "")
	require.True(t, ok)
	assert.Equal(t, "local", id.UserID)
	assert.Equal(t, 0, verifier.calls)
}

func TestResolver_ExpiredSessionFallsBackToBackend(t *testing.T) {
	verifier := &fakeVerifier{users: map[string]string{"tok": "remote"}}
	sessions := &fakeSessions{sessions: map[string]*models.Session{
		"tok": {Token: "tok", UserID: "local", ExpiresAt: time.Now().Add(-time.Minute)},
	}}
	r := NewResolver(verifier, sessions, zaptest.NewLogger(t))

	id, ok := r.Resolve(context.Background(), "tok", "")
	require.True(t, ok)
	assert.Equal(t, "remote", id.UserID)
	assert.Equal(t, 1, verifier.calls)
}

func TestResolver_BackendRejects(t *testing.T) {
	r := NewResolver(&fakeVerifier{}, &fakeSessions{err: errors.New("boom")}, zaptest.NewLogger(t))

	_, ok := r.Resolve(context.Background(), "bad", "42")
	assert.False(t, ok, "user id header must be ignored when a backend is configured")
}

func TestResolver_HeaderWithoutBackend(t *testing.T) {
	r := NewResolver(nil, &fakeSessions{}, zaptest.NewLogger(t))

	id, ok := r.Resolve(context.Background(), "", "42")
	require.True(t, ok)
	assert.Equal(t, "42", id.UserID)

	_, ok = r.Resolve(context.Background(), "", "")
	assert.False(t, ok)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewResolver(nil, &fakeSessions{}, zaptest.NewLogger(t))

	router := gin.New()
	router.Use(r.Middleware())
	router.GET("/open", func(c *gin.Context) {
		id, _ := FromContext(c.Request.Context())
		c.String(http.StatusOK, id.UserID)
	})
	router.GET("/closed", Required(), func(c *gin.Context) {
		id, _ := Current(c)
		c.String(http.StatusOK, id.UserID)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set(HeaderUserID, "42")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/closed", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set(HeaderUserID, "7")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", w.Body.String())
}
