package users

import "time"

// User is the stored credential record for a single Spotify account. The ID
// is the Spotify account ID, not locally generated, and never changes after
// the first insert.
type User struct {
	ID           string    `json:"id,omitempty"`           // Spotify account ID (primary key)
	DisplayName  string    `json:"display_name,omitempty"` // Display name reported by Spotify
	Email        string    `json:"email,omitempty"`        // Email reported by Spotify, unique when present
	AccessToken  string    `json:"-"`                      // Current upstream access token - never serialize
	RefreshToken string    `json:"-"`                      // Upstream refresh token - never serialize
	ExpiresAt    int64     `json:"expires_at,omitempty"`   // Absolute expiry of AccessToken, epoch seconds
	CreatedAt    time.Time `json:"created_at,omitempty"`   // Set once on first login
	LastLoginAt  time.Time `json:"last_login,omitempty"`   // Updated on every successful login
	IsAdmin      bool      `json:"is_admin,omitempty"`     // Administrative flag, never set by this service
}

// TokenExpired reports whether the stored access token is no longer usable.
// The boundary second counts as expired so a request never races upstream's
// own clock.
func (u *User) TokenExpired(now time.Time) bool {
	return now.Unix() >= u.ExpiresAt
}
