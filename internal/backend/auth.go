package backend

import (
	"context"
	"net/http"
	"net/url"

	"wavy/pkg/models"
)

// RegisterRequest is the body of a registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register, login and verify
type AuthResponse struct {
	Message      string       `json:"message,omitempty"`
	SessionToken string       `json:"sessionToken,omitempty"`
	User         *models.User `json:"user,omitempty"`
	Valid        bool         `json:"valid,omitempty"`
}

// Session converts the response into a locally persistable session
func (r *AuthResponse) Session() *models.Session {
	s := &models.Session{Token: r.SessionToken, User: r.User}
	if r.User != nil {
		s.UserID = r.User.ID
	}
	return s
}

// Register creates an account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends a session
func (c *Client) Logout(ctx context.Context, sessionToken string) error {
	body := map[string]string{"sessionToken": sessionToken}
	return c.do(ctx, http.MethodPost, "/auth/logout", "", body, nil)
}

// VerifySession checks a session token and returns its user
func (c *Client) VerifySession(ctx context.Context, sessionToken string) (*AuthResponse, error) {
	var out AuthResponse
	path := "/auth/verify?sessionToken=" + url.QueryEscape(sessionToken)
	if err := c.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
