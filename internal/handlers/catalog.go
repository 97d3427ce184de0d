package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"wavy/internal/catalog"
)

// ListCategories handles GET /categories
func (h *Handler) ListCategories(c *gin.Context) {
	lang := h.language(c)
	categories := catalog.List()
	out := make([]catalog.Localized, 0, len(categories))
	for _, category := range categories {
		out = append(out, category.Localize(lang))
	}
	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// GetCategory handles GET /categories/:id
func (h *Handler) GetCategory(c *gin.Context) {
	category, err := catalog.Resolve(c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to resolve category")
		return
	}
	c.JSON(http.StatusOK, category.Localize(h.language(c)))
}

// CategoryMovies handles GET /categories/:id/movies
func (h *Handler) CategoryMovies(c *gin.Context) {
	page, err := h.catalog.Movies(c.Request.Context(), c.Param("id"), h.language(c), pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to load category")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CategoryPreview handles GET /categories/:id/preview
func (h *Handler) CategoryPreview(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(catalog.DefaultPreviewLimit)))
	if err != nil || limit < 1 {
		limit = catalog.DefaultPreviewLimit
	}
	page, err := h.catalog.Preview(c.Request.Context(), c.Param("id"), h.language(c), limit)
	if err != nil {
		h.fail(c, err, "failed to load category preview")
		return
	}
	c.JSON(http.StatusOK, page)
}

// CategorySearch handles GET /categories/:id/search?q=
func (h *Handler) CategorySearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}
	page, err := h.catalog.Search(c.Request.Context(), c.Param("id"), query, h.language(c), pageParam(c))
	if err != nil {
		h.fail(c, err, "failed to search category")
		return
	}
	c.JSON(http.StatusOK, page)
}

// Genres handles GET /genres
func (h *Handler) Genres(c *gin.Context) {
	genres, err := h.metadata.Genres(c.Request.Context(), h.language(c))
	if err != nil {
		h.fail(c, err, "failed to load genres")
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}
