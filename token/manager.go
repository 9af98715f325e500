package token

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aspekts/musictracker/users"
)

// RefreshToken is the server-side record backing an opaque session refresh
// token. One active token per user; redeeming or reissuing rotates it.
type RefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// SessionTokens is the credential pair handed to the browser: a short-lived
// signed access token plus a long-lived opaque refresh token.
type SessionTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Introspection is the decoded state of a session access token. If Active
// is false the other fields may not be populated.
type Introspection struct {
	Active bool   `json:"active"`
	Sub    string `json:"sub,omitempty"`   // User's Spotify ID
	Name   string `json:"name,omitempty"`  // Display name claim
	Email  string `json:"email,omitempty"` // Email claim
	Admin  bool   `json:"admin,omitempty"` // Administrative flag claim
	Iat    int64  `json:"iat,omitempty"`   // Issued at time
	Exp    int64  `json:"exp,omitempty"`   // Expiration
	Iss    string `json:"iss,omitempty"`   // Issuer
}

// Manager creates, verifies and rotates the local session credentials. It
// is a pure function of the signing key plus the refresh-token store; it
// never talks to Spotify.
type Manager struct {
	signer             Signer
	refreshRepo        RefreshTokenRepo
	issuer             string
	audience           string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry, refreshTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
		m.refreshTokenExpiry = refreshTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithAudience(audience string) ManagerOption {
	return func(m *Manager) {
		m.audience = audience
	}
}

func New(refreshRepo RefreshTokenRepo, signer Signer, options ...ManagerOption) *Manager {
	m := &Manager{
		signer:      signer,
		refreshRepo: refreshRepo,
	}

	for _, opt := range options {
		opt(m)
	}

	if m.accessTokenExpiry == 0 {
		m.accessTokenExpiry = time.Hour
	}
	if m.refreshTokenExpiry == 0 {
		m.refreshTokenExpiry = 7 * 24 * time.Hour
	}
	if m.nowFunc == nil {
		m.nowFunc = time.Now
	}
	return m
}

// CreateAccessToken signs a session access token carrying the user's
// identity claims.
func (m *Manager) CreateAccessToken(user *users.User) (string, error) {
	claims := jwt.MapClaims{
		"iss":   m.issuer,
		"sub":   user.ID,
		"aud":   m.audience,
		"name":  user.DisplayName,
		"email": user.Email,
		"admin": user.IsAdmin,
		"iat":   m.nowFunc().Unix(),
		"exp":   m.nowFunc().Add(m.accessTokenExpiry).Unix(),
		"jti":   uuid.New().String(),
	}
	return m.signer.Sign(claims)
}

// CreateRefreshToken mints a new opaque refresh token for the user,
// replacing any previously stored one.
func (m *Manager) CreateRefreshToken(userID string) (string, error) {
	if existing, err := m.refreshRepo.GetByUserID(userID); err == nil && existing != nil {
		if err := m.refreshRepo.Delete(existing.Token); err != nil {
			return "", errors.Wrap(err, "[Manager.CreateRefreshToken] Delete")
		}
	}

	tokenBytes := make([]byte, 32) // 256 bits
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[Manager.CreateRefreshToken] rand.Read")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.refreshRepo.Upsert(&RefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    m.nowFunc(),
	}); err != nil {
		return "", errors.Wrap(err, "[Manager.CreateRefreshToken] Upsert")
	}
	return tokenStr, nil
}

// IssueSession creates a fresh session token pair for the user. Sessions
// are immutable once issued; refreshing always goes through IssueSession
// again rather than patching an existing token.
func (m *Manager) IssueSession(user *users.User) (*SessionTokens, error) {
	accessToken, err := m.CreateAccessToken(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.IssueSession] CreateAccessToken")
	}
	refreshToken, err := m.CreateRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.IssueSession] CreateRefreshToken")
	}

	return &SessionTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(m.accessTokenExpiry.Seconds()),
	}, nil
}

// RedeemRefreshToken validates a presented refresh token and consumes it.
// The stored record is deleted whether or not it had expired, so a token
// can be redeemed at most once.
func (m *Manager) RedeemRefreshToken(rawToken string) (*RefreshToken, error) {
	rt, err := m.refreshRepo.Get(rawToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}

	_ = m.refreshRepo.Delete(rawToken)

	if m.nowFunc().Sub(rt.Iat) > m.refreshTokenExpiry {
		return nil, errors.New("refresh token expired")
	}
	return rt, nil
}

// InvalidateRefreshToken removes a stored refresh token, ending the session.
func (m *Manager) InvalidateRefreshToken(rawToken string) {
	_ = m.refreshRepo.Delete(rawToken)
}

// Introspect parses and verifies a session access token.
func (m *Manager) Introspect(rawToken string) (*Introspection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &Introspection{Active: false}, nil
	}

	parsed, err := jwt.Parse(rawToken, m.signer.GetVerificationKey)
	if err != nil || !parsed.Valid {
		return &Introspection{Active: false}, err
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return &Introspection{Active: false}, errors.New("error extracting claims from token")
	}

	iss, _ := claims["iss"].(string)
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	email, _ := claims["email"].(string)
	admin, _ := claims["admin"].(bool)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)

	active := m.nowFunc().Unix() <= int64(exp)

	return &Introspection{
		Active: active,
		Sub:    sub,
		Name:   name,
		Email:  email,
		Admin:  admin,
		Iat:    int64(iat),
		Exp:    int64(exp),
		Iss:    iss,
	}, nil
}
