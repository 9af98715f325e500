package auth

import "errors"

var (
	StateMismatchErr  = errors.New("authorization state mismatch")
	MissingCodeErr    = errors.New("missing authorization code")
	UpstreamAuthErr   = errors.New("upstream authorization failed")
	UserNotFoundErr   = errors.New("user not found")
	TokenRefreshErr   = errors.New("token refresh failed")
	InvalidSessionErr = errors.New("invalid session")
)
