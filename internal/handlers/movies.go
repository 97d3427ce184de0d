package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wavy/pkg/models"
)

type listFunc func(ctx context.Context, lang string, page int) (*models.CatalogPage, error)

// listing serves one of the fixed catalog listings
func (h *Handler) listing(name string, fn listFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := fn(c.Request.Context(), h.language(c), pageParam(c))
		if err != nil {
			h.fail(c, err, "failed to load "+name)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// Popular handles GET /movies/popular
func (h *Handler) Popular() gin.HandlerFunc {
	return h.listing("popular movies", h.metadata.Popular)
}

// PopularSeries handles GET /series/popular
func (h *Handler) PopularSeries() gin.HandlerFunc {
	return h.listing("popular series", h.metadata.PopularSeries)
}

// TopRated handles GET /movies/top-rated
func (h *Handler) TopRated() gin.HandlerFunc {
	return h.listing("top rated movies", h.metadata.TopRated)
}

// Upcoming handles GET /movies/upcoming
func (h *Handler) Upcoming() gin.HandlerFunc {
	return h.listing("upcoming movies", h.metadata.Upcoming)
}

// NowPlaying handles GET /movies/now-playing
func (h *Handler) NowPlaying() gin.HandlerFunc {
	return h.listing("now playing movies", h.metadata.NowPlaying)
}

// Trending handles GET /movies/trending/:window
func (h *Handler) Trending(c *gin.Context) {
	page, err := h.metadata.Trending(c.Request.Context(), h.language(c), c.Param("window"), pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to load trending movies")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Search handles GET /movies/search?q=
func (h *Handler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	page, err := h.metadata.Search(c.Request.Context(), h.language(c), query, pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to search movies")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Details handles GET /movies/:id
func (h *Handler) Details(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	details, err := h.metadata.Details(c.Request.Context(), h.language(c), id)
	if err != nil {
		h.fail(c, err, "failed to load movie")
		return
	}
	c.JSON(http.StatusOK, details)
}

// Credits handles GET /movies/:id/credits
func (h *Handler) Credits(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	credits, err := h.metadata.Credits(c.Request.Context(), h.language(c), id)
	if err != nil {
		h.fail(c, err, "failed to load credits")
		return
	}
	c.JSON(http.StatusOK, credits)
}

// Similar handles GET /movies/:id/similar
func (h *Handler) Similar(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, err := h.metadata.Similar(c.Request.Context(), h.language(c), id, pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to load similar movies")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Recommendations handles GET /movies/:id/recommendations
func (h *Handler) Recommendations(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, err := h.metadata.Recommendations(c.Request.Context(), h.language(c), id, pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to load recommendations")
		return
	}
	c.JSON(http.StatusOK, page)
}
