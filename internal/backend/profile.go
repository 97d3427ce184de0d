package backend

import (
	"context"
	"net/http"

	"wavy/pkg/models"
)

// ProfileUpdate carries editable profile fields
type ProfileUpdate struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	AvatarID string `json:"avatar_id,omitempty"`
}

// Profile returns the authenticated user's profile
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile edits the authenticated user's profile
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPut, "/profile", token, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword replaces the password of the authenticated user
func (c *Client) ChangePassword(ctx context.Context, token, currentPassword, newPassword string) error {
	body := map[string]string{"currentPassword": currentPassword, "newPassword": newPassword}
	return c.do(ctx, http.MethodPut, "/profile/password", token, body, nil)
}
