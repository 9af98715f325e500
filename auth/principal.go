package auth

import "github.com/aspekts/musictracker/token"

// SessionPrincipal is the decoded identity carried by a session access
// token. It is derived from the stored credential at issuance time and
// never independently mutated; refreshing a session issues a new token
// rather than patching this one.
type SessionPrincipal struct {
	UserID      string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
	IsAdmin     bool   `json:"is_admin"`
	IssuedAt    int64  `json:"issued_at"`
	ExpiresAt   int64  `json:"expires_at"`
}

// PrincipalFromIntrospection converts an active introspection result into
// the principal handed to request handlers. Returns nil for inactive
// tokens.
func PrincipalFromIntrospection(in *token.Introspection) *SessionPrincipal {
	if in == nil || !in.Active || in.Sub == "" {
		return nil
	}
	return &SessionPrincipal{
		UserID:      in.Sub,
		DisplayName: in.Name,
		Email:       in.Email,
		IsAdmin:     in.Admin,
		IssuedAt:    in.Iat,
		ExpiresAt:   in.Exp,
	}
}
