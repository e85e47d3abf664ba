package domain

import "time"

// User is the authenticated identity as reported by the identity provider.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Profile is the public profile row joined onto posts and books.
type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	AvatarURL  string `json:"avatar_url,omitempty"`
	Department string `json:"department,omitempty"`
	Bio        string `json:"bio,omitempty"`
}

// Session is an opaque authenticated session issued by the identity provider.
// The daemon stores tokens without inspecting them.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitzero"`
	User         User      `json:"user"`
}

// Expired reports whether the session's access token has lapsed.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}
