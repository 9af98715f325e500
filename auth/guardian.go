package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/aspekts/musictracker/users"
)

// Refresher performs the upstream refresh-token exchange.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// TokenGuardian hands out currently-valid upstream access tokens,
// transparently refreshing and persisting them when expired. Refreshes for
// the same user are serialized: Spotify invalidates the old refresh token
// on rotation, so two concurrent exchanges would strand the loser with a
// dead credential. Losers of the race wait on the per-user lock, re-read
// the store and reuse the winner's token instead of calling upstream.
type TokenGuardian struct {
	repo     users.UserRepo
	upstream Refresher
	nowTime  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

type TokenGuardianOption func(*TokenGuardian)

// WithGuardianNowTime sets the now time function (primarily for testing)
func WithGuardianNowTime(nowFunc func() time.Time) TokenGuardianOption {
	return func(g *TokenGuardian) {
		g.nowTime = nowFunc
	}
}

// NewTokenGuardian creates a TokenGuardian over the credential store.
func NewTokenGuardian(repo users.UserRepo, upstream Refresher, options ...TokenGuardianOption) *TokenGuardian {
	g := &TokenGuardian{
		repo:     repo,
		upstream: upstream,
		nowTime:  time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// GetValidAccessToken returns a usable upstream access token for the user.
// The common path is a single store read and zero upstream calls; only an
// expired token triggers the refresh exchange.
func (g *TokenGuardian) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	user, err := g.repo.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", UserNotFoundErr, userID)
	}

	if !user.TokenExpired(g.nowTime()) {
		return user.AccessToken, nil
	}

	lock := g.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read: a concurrent caller may have refreshed while we waited.
	user, err = g.repo.GetByID(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %s", UserNotFoundErr, userID)
	}
	if !user.TokenExpired(g.nowTime()) {
		return user.AccessToken, nil
	}

	if user.RefreshToken == "" {
		return "", fmt.Errorf("%w: no refresh token stored", TokenRefreshErr)
	}

	refreshed, err := g.upstream.Refresh(ctx, user.RefreshToken)
	if err != nil {
		// Nothing is persisted on failure; the stored pair stays intact.
		return "", fmt.Errorf("%w: %v", TokenRefreshErr, err)
	}
	if refreshed.AccessToken == "" {
		return "", fmt.Errorf("%w: upstream returned an empty token", TokenRefreshErr)
	}

	if err := g.repo.UpdateTokens(userID, refreshed.AccessToken, refreshed.RefreshToken, refreshed.Expiry.Unix()); err != nil {
		return "", fmt.Errorf("%w: persisting refreshed token: %v", TokenRefreshErr, err)
	}
	return refreshed.AccessToken, nil
}

func (g *TokenGuardian) userLock(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[userID] = lock
	}
	return lock
}
