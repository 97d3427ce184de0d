package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wavy/internal/auth"
	"wavy/internal/backend"
	"wavy/internal/preferences"
	"wavy/pkg/models"
)

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req backend.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}
	resp, err := h.backend.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "failed to register")
		return
	}
	h.persistSession(c, resp)
	c.JSON(http.StatusCreated, resp)
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	resp, err := h.backend.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err, "failed to login")
		return
	}
	h.persistSession(c, resp)
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /auth/logout. The local session is always dropped.
func (h *Handler) Logout(c *gin.Context) {
	token := auth.BearerToken(c.GetHeader("Authorization"))
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session token is required"})
		return
	}
	if err := h.prefs.ClearSession(c.Request.Context(), token); err != nil {
		h.logger.Warn("failed to clear local session", zap.Error(err))
	}
	if h.backend.Enabled() {
		if err := h.backend.Logout(c.Request.Context(), token); err != nil {
			h.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Verify handles GET /auth/verify
func (h *Handler) Verify(c *gin.Context) {
	id, ok := auth.Current(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"valid": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user_id": id.UserID})
}

func (h *Handler) persistSession(c *gin.Context, resp *backend.AuthResponse) {
	if resp.SessionToken == "" {
		return
	}
	if err := h.prefs.SaveSession(c.Request.Context(), resp.Session()); err != nil {
		h.logger.Warn("failed to persist session", zap.Error(err))
	}
}

// Profile handles GET /me/profile
func (h *Handler) Profile(c *gin.Context) {
	id, _ := auth.Current(c)
	user, err := h.backend.Profile(c.Request.Context(), id.Token)
	if err != nil {
		h.fail(c, err, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile handles PUT /me/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	var update backend.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if update.AvatarID != "" {
		if _, ok := preferences.AvatarByID(update.AvatarID); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": preferences.ErrUnknownAvatar.Error()})
			return
		}
	}
	id, _ := auth.Current(c)
	user, err := h.backend.UpdateProfile(c.Request.Context(), id.Token, update)
	if err != nil {
		h.fail(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ChangePassword handles PUT /me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "currentPassword and newPassword are required"})
		return
	}
	id, _ := auth.Current(c)
	if err := h.backend.ChangePassword(c.Request.Context(), id.Token, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(c, err, "failed to change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// GetPreferences handles GET /me/preferences
func (h *Handler) GetPreferences(c *gin.Context) {
	prefs, err := h.prefs.Get(c.Request.Context(), ownerID(c))
	if err != nil {
		h.fail(c, err, "failed to load preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// UpdatePreferences handles PUT /me/preferences
func (h *Handler) UpdatePreferences(c *gin.Context) {
	var update models.Preferences
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	prefs, err := h.prefs.Update(c.Request.Context(), ownerID(c), update)
	if err != nil {
		h.fail(c, err, "failed to update preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// Avatars handles GET /avatars
func (h *Handler) Avatars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"avatars":     preferences.Avatars(),
		"by_category": preferences.AvatarsByCategory(),
	})
}
