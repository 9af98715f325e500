package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/aspekts/musictracker/spotify"
	"github.com/aspekts/musictracker/token"
	"github.com/aspekts/musictracker/users"
)

const stateLength = 32 // 256 bits of anti-forgery state

// Upstream is the slice of the Spotify authorization server this service
// depends on: authorize-URL construction, code exchange, refresh exchange
// and the profile lookup that follows a successful exchange.
type Upstream interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// ProfileFetcher retrieves the profile of the account a bare access token
// belongs to. Kept separate from Upstream because it talks to the data API,
// not the authorization server.
type ProfileFetcher interface {
	ProfileWithToken(ctx context.Context, accessToken string) (*spotify.UserProfile, error)
}

// Repos holds the repository dependencies for the AuthorizationService.
type Repos struct {
	Users users.UserRepo
}

// AuthorizationService completes the Spotify login handshake and issues the
// local session credentials the browser holds afterwards.
type AuthorizationService struct {
	repos    Repos
	tokens   *token.Manager
	upstream Upstream
	profiles ProfileFetcher
	nowTime  func() time.Time // nowTime function (injectable for testing)
}

// AuthorizationServiceOption defines a function type to modify the AuthorizationService instance.
type AuthorizationServiceOption func(*AuthorizationService)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) AuthorizationServiceOption {
	return func(as *AuthorizationService) {
		as.nowTime = nowFunc
	}
}

// NewAuthorizationService initializes a new AuthorizationService with required dependencies.
func NewAuthorizationService(
	repos Repos,
	tokens *token.Manager,
	upstream Upstream,
	profiles ProfileFetcher,
	options ...AuthorizationServiceOption,
) (*AuthorizationService, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewAuthorizationService] Users repo is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAuthorizationService] token manager is required")
	}
	if upstream == nil {
		return nil, errors.New("[NewAuthorizationService] upstream is required")
	}
	if profiles == nil {
		return nil, errors.New("[NewAuthorizationService] profile fetcher is required")
	}

	authService := &AuthorizationService{
		repos:    repos,
		tokens:   tokens,
		upstream: upstream,
		profiles: profiles,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(authService)
	}

	return authService, nil
}

// BeginAuthorization generates a single-use anti-forgery state and the
// Spotify authorization URL embedding it. The caller redirects the user and
// keeps the state somewhere request-scoped (a short-lived cookie).
func (as *AuthorizationService) BeginAuthorization() (redirectURL, state string, err error) {
	state, err = GenerateState()
	if err != nil {
		return "", "", errors.Wrap(err, "[BeginAuthorization] GenerateState")
	}
	return as.upstream.AuthCodeURL(state), state, nil
}

// CompleteAuthorization finishes the login handshake: it enforces the state
// check before any upstream call, exchanges the code for a token pair,
// fetches the upstream profile and upserts the credential record. Calling
// it twice for the same Spotify account updates the existing row.
func (as *AuthorizationService) CompleteAuthorization(ctx context.Context, code, returnedState, expectedState string) (*users.User, error) {
	if expectedState == "" || returnedState != expectedState {
		return nil, StateMismatchErr
	}
	if code == "" {
		return nil, MissingCodeErr
	}

	upstreamToken, err := as.upstream.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", UpstreamAuthErr, err)
	}

	profile, err := as.profiles.ProfileWithToken(ctx, upstreamToken.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", UpstreamAuthErr, err)
	}

	now := as.nowTime()
	user := &users.User{
		ID:           profile.ID,
		DisplayName:  profile.DisplayName,
		Email:        profile.Email,
		AccessToken:  upstreamToken.AccessToken,
		RefreshToken: upstreamToken.RefreshToken,
		ExpiresAt:    upstreamToken.Expiry.Unix(),
		CreatedAt:    now,
		LastLoginAt:  now,
	}

	if existing, err := as.repos.Users.GetByID(profile.ID); err == nil && existing != nil {
		user.CreatedAt = existing.CreatedAt
		user.IsAdmin = existing.IsAdmin
		// Spotify only issues a refresh token on the first consent
		if user.RefreshToken == "" {
			user.RefreshToken = existing.RefreshToken
		}
	}

	if err := as.repos.Users.Upsert(user); err != nil {
		return nil, errors.Wrap(err, "[CompleteAuthorization] Upsert")
	}
	return user, nil
}

// IssueSession produces the browser-facing session token pair for a freshly
// authenticated user.
func (as *AuthorizationService) IssueSession(user *users.User) (*token.SessionTokens, error) {
	return as.tokens.IssueSession(user)
}

// RefreshSession rotates a presented session refresh token into a brand-new
// token pair. The old pair is dead afterwards regardless of outcome.
func (as *AuthorizationService) RefreshSession(refreshToken string) (*token.SessionTokens, error) {
	rt, err := as.tokens.RedeemRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", InvalidSessionErr, err)
	}

	user, err := as.repos.Users.GetByID(rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", UserNotFoundErr, err)
	}

	return as.tokens.IssueSession(user)
}

// Logout revokes a session refresh token. The access token is left to
// expire on its own.
func (as *AuthorizationService) Logout(refreshToken string) {
	as.tokens.InvalidateRefreshToken(refreshToken)
}

// GetUser loads the stored credential record for a session principal.
func (as *AuthorizationService) GetUser(userID string) (*users.User, error) {
	user, err := as.repos.Users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", UserNotFoundErr, err)
	}
	return user, nil
}

// GenerateState returns a cryptographically random, URL-safe state token.
func GenerateState() (string, error) {
	bytes := make([]byte, stateLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", errors.Wrap(err, "[GenerateState] rand.Read")
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// CallbackParams extracts code and state from the upstream redirect query.
func CallbackParams(query url.Values) (code, state string) {
	return query.Get("code"), query.Get("state")
}
