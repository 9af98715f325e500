package spotify

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const (
	AuthURL  = "https://accounts.spotify.com/authorize"
	TokenURL = "https://accounts.spotify.com/api/token"
	BaseURL  = "https://api.spotify.com/v1"
)

// Scopes requested from Spotify at login. Read-only access to the profile,
// library and listening history.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-top-read",
	"user-read-recently-played",
}

// Authenticator performs the server-to-server halves of the Spotify
// authorization-code flow: code exchange and refresh-token exchange.
type Authenticator struct {
	config *oauth2.Config
}

type AuthenticatorOption func(*Authenticator)

// WithEndpoint overrides the authorize/token URLs (primarily for testing).
func WithEndpoint(authURL, tokenURL string) AuthenticatorOption {
	return func(a *Authenticator) {
		a.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	}
}

// NewAuthenticator creates an Authenticator for the registered Spotify app.
func NewAuthenticator(clientID, clientSecret, redirectURL string, options ...AuthenticatorOption) (*Authenticator, error) {
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("[NewAuthenticator] client id and secret are required")
	}
	if redirectURL == "" {
		return nil, errors.New("[NewAuthenticator] redirect URL is required")
	}

	a := &Authenticator{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  AuthURL,
				TokenURL: TokenURL,
			},
		},
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// AuthCodeURL returns the Spotify authorization URL carrying the requested
// scopes and the anti-forgery state.
func (a *Authenticator) AuthCodeURL(state string) string {
	return a.config.AuthCodeURL(state)
}

// Exchange trades an authorization code for a token pair.
func (a *Authenticator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Exchange] code exchange")
	}
	return token, nil
}

// Refresh trades a refresh token for a fresh access token. Spotify may or
// may not rotate the refresh token; when it does not, the returned token's
// RefreshToken field carries the value passed in (oauth2 preserves it).
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, errors.New("[Authenticator.Refresh] no refresh token")
	}
	token, err := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, errors.Wrap(err, "[Authenticator.Refresh] refresh exchange")
	}
	return token, nil
}
