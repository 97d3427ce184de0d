package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wavy/internal/addons"
)

// ListAddons handles GET /me/addons, optionally filtered by ?type=
func (h *Handler) ListAddons(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		list []addons.Addon
		err  error
	)
	if t := c.Query("type"); t != "" {
		list, err = h.addons.ListByType(ctx, ownerID(c), addons.Type(t))
	} else {
		list, err = h.addons.List(ctx, ownerID(c))
	}
	if err != nil {
		h.fail(c, err, "failed to list add-ons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"addons": list, "count": len(list)})
}

// InstallAddon handles POST /me/addons
func (h *Handler) InstallAddon(c *gin.Context) {
	var req addons.Addon
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid add-on"})
		return
	}
	addon, err := h.addons.Install(c.Request.Context(), ownerID(c), req)
	if err != nil {
		h.fail(c, err, "failed to install add-on")
		return
	}
	c.JSON(http.StatusCreated, addon)
}

// ToggleAddon handles PUT /me/addons/:id/toggle
func (h *Handler) ToggleAddon(c *gin.Context) {
	addon, err := h.addons.Toggle(c.Request.Context(), ownerID(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to toggle add-on")
		return
	}
	c.JSON(http.StatusOK, addon)
}

// UninstallAddon handles DELETE /me/addons/:id
func (h *Handler) UninstallAddon(c *gin.Context) {
	if err := h.addons.Uninstall(c.Request.Context(), ownerID(c), c.Param("id")); err != nil {
		h.fail(c, err, "failed to uninstall add-on")
		return
	}
	c.Status(http.StatusNoContent)
}
