package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavy/internal/backend"
	"wavy/pkg/models"
)

// HeaderUserID names a trusted user id header, honoured only without a backend
const HeaderUserID = "X-User-ID"

const contextKey = "identity"

// Verifier checks a session token against the backend
type Verifier interface {
	VerifySession(ctx context.Context, sessionToken string) (*backend.AuthResponse, error)
}

// SessionStore reads locally persisted sessions
type SessionStore interface {
	Session(ctx context.Context, token string) (*models.Session, bool, error)
}

// Resolver turns request credentials into an Identity
type Resolver struct {
	verifier Verifier
	sessions SessionStore
	logger   *zap.Logger
	now      func() time.Time
}

// NewResolver creates a resolver. verifier may be nil when no backend is configured.
func NewResolver(verifier Verifier, sessions SessionStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		verifier: verifier,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the identity for a bearer token and an optional user id header
func (r *Resolver) Resolve(ctx context.Context, token, headerUserID string) (Identity, bool) {
	if token != "" {
		if r.sessions != nil {
			session, ok, err := r.sessions.Session(ctx, token)
			if err != nil {
				r.logger.Warn("failed to read session", zap.Error(err))
			} else if ok && !session.Expired(r.now()) && session.UserID != "" {
				return Identity{UserID: session.UserID, Token: token}, true
			}
		}

		if r.verifier != nil {
			resp, err := r.verifier.VerifySession(ctx, token)
			if err != nil {
				r.logger.Debug("session verification failed", zap.Error(err))
				return Identity{}, false
			}
			if resp.User != nil && resp.User.ID != "" {
				return Identity{UserID: resp.User.ID, Token: token}, true
			}
			return Identity{}, false
		}
	}

	if r.verifier == nil && headerUserID != "" {
		return Identity{UserID: headerUserID, Token: token}, true
	}
	return Identity{}, false
}

// Middleware attaches the caller identity, when one can be resolved
func (r *Resolver) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		id, ok := r.Resolve(c.Request.Context(), token, strings.TrimSpace(c.GetHeader(HeaderUserID)))
		if ok {
			c.Set(contextKey, id)
			c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), id))
		}
		c.Next()
	}
}

// Required aborts with 401 when no identity was attached
func Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(contextKey); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrNotAuthenticated.Error()})
			return
		}
		c.Next()
	}
}

// Current returns the identity attached by Middleware
func Current(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
