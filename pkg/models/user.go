package models

import "time"

// User is the profile returned by the first-party backend
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarID  string    `json:"avatar_id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Session is an authenticated session as persisted locally
type Session struct {
	Token     string    `json:"sessionToken"`
	UserID    string    `json:"userId"`
	User      *User     `json:"user,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the session has a deadline that has passed
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Preferences are the per-user interface settings
type Preferences struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
	AvatarID string `json:"avatar_id,omitempty"`
}

// Avatar is a selectable profile picture
type Avatar struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Category string `json:"category"`
}
