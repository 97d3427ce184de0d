package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavy/internal/addons"
	"wavy/internal/auth"
	"wavy/internal/backend"
	"wavy/internal/cache"
	"wavy/internal/catalog"
	"wavy/internal/collection"
	"wavy/internal/events"
	"wavy/internal/preferences"
	"wavy/internal/tmdb"
	"wavy/pkg/models"
)

// Metadata is the part of the metadata client the API serves
type Metadata interface {
	Language(lang string) string
	Popular(ctx context.Context, lang string, page int) (*models.CatalogPage, error)
	PopularSeries(ctx context.Context, lang string, page int) (*models.CatalogPage, error)
	TopRated(ctx context.Context, lang string, page int) (*models.CatalogPage, error)
	Upcoming(ctx context.Context, lang string, page int) (*models.CatalogPage, error)
	NowPlaying(ctx context.Context, lang string, page int) (*models.CatalogPage, error)
	Search(ctx context.Context, lang, query string, page int) (*models.CatalogPage, error)
	Trending(ctx context.Context, lang, window string, page int) (*models.CatalogPage, error)
	Details(ctx context.Context, lang string, id int64) (*models.MovieDetails, error)
	Credits(ctx context.Context, lang string, id int64) (*models.Credits, error)
	Similar(ctx context.Context, lang string, id int64, page int) (*models.CatalogPage, error)
	Recommendations(ctx context.Context, lang string, id int64, page int) (*models.CatalogPage, error)
	Genres(ctx context.Context, lang string) ([]models.Genre, error)
}

// Deps are the services behind the API
type Deps struct {
	Metadata    Metadata
	Catalog     *catalog.Service
	Collections *collection.Set
	Preferences *preferences.Service
	Addons      *addons.Service
	Backend     *backend.Client
	Bus         *events.Bus
	Cache       cache.Store
	Logger      *zap.Logger

	// EventBuffer sizes each event stream's queue
	EventBuffer int
}

// Handler serves the HTTP API
type Handler struct {
	metadata    Metadata
	catalog     *catalog.Service
	collections *collection.Set
	prefs       *preferences.Service
	addons      *addons.Service
	backend     *backend.Client
	bus         *events.Bus
	eventBuffer int
	cache       cache.Store
	logger      *zap.Logger
}

// pinger is implemented by cache stores backed by a remote server
type pinger interface {
	Ping(ctx context.Context) error
}

// NewHandler creates a new handler
func NewHandler(deps Deps) *Handler {
	if deps.EventBuffer < 1 {
		deps.EventBuffer = 16
	}
	return &Handler{
		metadata:    deps.Metadata,
		catalog:     deps.Catalog,
		collections: deps.Collections,
		prefs:       deps.Preferences,
		addons:      deps.Addons,
		backend:     deps.Backend,
		bus:         deps.Bus,
		eventBuffer: deps.EventBuffer,
		cache:       deps.Cache,
		logger:      deps.Logger,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	stats := h.cache.Stats()
	body := gin.H{
		"status": "healthy",
		"cache": gin.H{
			"hits":   stats.Hits,
			"misses": stats.Misses,
			"puts":   stats.Puts,
			"ttl":    h.cache.TTL().String(),
		},
		"backend":     h.backend.Enabled(),
		"subscribers": h.bus.Subscribers(),
	}

	if p, ok := h.cache.(pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			body["status"] = "degraded"
			body["cache_error"] = err.Error()
		}
	}

	if h.backend.Enabled() {
		if err := h.backend.Health(c.Request.Context()); err != nil {
			h.logger.Warn("backend health check failed", zap.Error(err))
			body["status"] = "degraded"
			body["backend_error"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, body)
}

// Ping handles GET /ping
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// language picks ?language=, then the caller's preference, then the default
func (h *Handler) language(c *gin.Context) string {
	if lang := c.Query("language"); lang != "" {
		return h.metadata.Language(lang)
	}
	if id, ok := auth.Current(c); ok {
		return h.metadata.Language(h.prefs.Language(c.Request.Context(), id.UserID))
	}
	return h.metadata.Language("")
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func ownerID(c *gin.Context) string {
	id, _ := auth.Current(c)
	return id.UserID
}

// fail maps an error to a status code and writes it
func (h *Handler) fail(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	body := gin.H{"error": msg}

	var fetchErr *tmdb.FetchError
	var apiErr *backend.APIError

	switch {
	case errors.Is(err, catalog.ErrCategoryNotFound),
		errors.Is(err, collection.ErrNotFound),
		errors.Is(err, addons.ErrNotFound):
		status = http.StatusNotFound
		body["error"] = err.Error()
	case errors.Is(err, collection.ErrAlreadyExists), errors.Is(err, addons.ErrAlreadyInstalled):
		status = http.StatusConflict
		body["error"] = err.Error()
	case errors.Is(err, auth.ErrNotAuthenticated):
		status = http.StatusUnauthorized
		body["error"] = err.Error()
	case errors.Is(err, tmdb.ErrInvalidWindow),
		errors.Is(err, collection.ErrNoProgress),
		errors.Is(err, preferences.ErrInvalidLanguage),
		errors.Is(err, preferences.ErrInvalidTheme),
		errors.Is(err, preferences.ErrUnknownAvatar),
		errors.Is(err, addons.ErrInvalid),
		errors.Is(err, addons.ErrBuiltIn):
		status = http.StatusBadRequest
		body["error"] = err.Error()
	case errors.As(err, &fetchErr):
		if fetchErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		} else {
			status = http.StatusBadGateway
			body["retryable"] = true
		}
		body["details"] = fetchErr.Message
	case errors.Is(err, backend.ErrDisabled):
		status = http.StatusServiceUnavailable
		body["error"] = err.Error()
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		body["error"] = apiErr.Message
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, zap.Error(err), zap.String("path", c.FullPath()))
	} else {
		h.logger.Debug(msg, zap.Error(err), zap.Int("status", status))
	}
	c.JSON(status, body)
}
