package auth_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/aspekts/musictracker/auth"
	"github.com/aspekts/musictracker/spotify"
	"github.com/aspekts/musictracker/token"
	tokenfakerepo "github.com/aspekts/musictracker/token/repofake"
	fakeuserrepo "github.com/aspekts/musictracker/users/repofake"
)

const (
	secretStr       = "1234"
	testUserID      = "spotify-user-1"
	testUserName    = "John Doe"
	testUserEmail   = "john.doe@example.com"
	testCode        = "auth-code-1"
	testState       = "random-state-value"
	testAccessToken = "upstream-access-token"
)

// fakeUpstream implements auth.Upstream and auth.ProfileFetcher, recording
// how often each exchange is hit.
type fakeUpstream struct {
	mu            sync.Mutex
	exchangeCalls int
	refreshCalls  int

	exchangeToken *oauth2.Token
	exchangeErr   error
	profile       *spotify.UserProfile
	profileErr    error
}

func (f *fakeUpstream) AuthCodeURL(state string) string {
	return "https://accounts.spotify.com/authorize?state=" + state
}

func (f *fakeUpstream) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeToken, nil
}

func (f *fakeUpstream) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.exchangeToken, nil
}

func (f *fakeUpstream) ProfileWithToken(_ context.Context, accessToken string) (*spotify.UserProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeUpstream) calls() (exchanges, refreshes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls, f.refreshCalls
}

// testFixture holds all test dependencies
type testFixture struct {
	userRepo *fakeuserrepo.FakeUserRepo
	upstream *fakeUpstream
	tokens   *token.Manager
	service  *auth.AuthorizationService
}

func setupTestFixture(t *testing.T, options ...auth.AuthorizationServiceOption) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	upstream := &fakeUpstream{
		exchangeToken: &oauth2.Token{
			AccessToken:  testAccessToken,
			RefreshToken: "upstream-refresh-token",
			Expiry:       time.Now().Add(time.Hour),
		},
		profile: &spotify.UserProfile{
			ID:          testUserID,
			DisplayName: testUserName,
			Email:       testUserEmail,
		},
	}
	tokens := token.New(tokenfakerepo.NewFakeTokensRepo(), token.NewHMACSigner(secretStr))

	service, err := auth.NewAuthorizationService(auth.Repos{Users: ur}, tokens, upstream, upstream, options...)
	require.NoError(t, err)

	return &testFixture{
		userRepo: ur,
		upstream: upstream,
		tokens:   tokens,
		service:  service,
	}
}

func TestBeginAuthorization_GeneratesUniqueState(t *testing.T) {
	f := setupTestFixture(t)

	redirectURL, state, err := f.service.BeginAuthorization()
	require.NoError(t, err)
	require.NotEmpty(t, state)
	require.GreaterOrEqual(t, len(state), 43, "32 random bytes base64url encoded")
	require.Contains(t, redirectURL, state)

	_, secondState, err := f.service.BeginAuthorization()
	require.NoError(t, err)
	require.NotEqual(t, state, secondState)
}

func TestCompleteAuthorization_StateMismatch(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.CompleteAuthorization(context.Background(), testCode, "attacker-state", testState)
	require.ErrorIs(t, err, auth.StateMismatchErr)

	exchanges, refreshes := f.upstream.calls()
	require.Zero(t, exchanges, "state mismatch must not reach upstream")
	require.Zero(t, refreshes)
}

func TestCompleteAuthorization_EmptyExpectedState(t *testing.T) {
	f := setupTestFixture(t)

	// Both states empty still fails: an absent state cookie is not a match.
	_, err := f.service.CompleteAuthorization(context.Background(), testCode, "", "")
	require.ErrorIs(t, err, auth.StateMismatchErr)
}

func TestCompleteAuthorization_MissingCode(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.CompleteAuthorization(context.Background(), "", testState, testState)
	require.ErrorIs(t, err, auth.MissingCodeErr)

	exchanges, _ := f.upstream.calls()
	require.Zero(t, exchanges)
}

func TestCompleteAuthorization_StoresCredential(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)
	require.Equal(t, testUserID, user.ID)
	require.Equal(t, testUserName, user.DisplayName)

	stored, err := f.userRepo.GetByID(testUserID)
	require.NoError(t, err)
	require.Equal(t, testAccessToken, stored.AccessToken)
	require.Equal(t, "upstream-refresh-token", stored.RefreshToken)
	require.NotZero(t, stored.ExpiresAt)
}

func TestCompleteAuthorization_IdempotentUpsert(t *testing.T) {
	firstLogin := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	now := firstLogin
	f := setupTestFixture(t, auth.WithNowTime(func() time.Time { return now }))

	_, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)

	now = firstLogin.Add(48 * time.Hour)
	_, err = f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(testUserID)
	require.NoError(t, err)
	require.Equal(t, firstLogin, stored.CreatedAt, "created_at survives re-login")
	require.Equal(t, now, stored.LastLoginAt)
}

func TestCompleteAuthorization_RetainsRefreshToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)

	// Spotify omits the refresh token when consent was already granted.
	f.upstream.exchangeToken = &oauth2.Token{
		AccessToken: "second-access-token",
		Expiry:      time.Now().Add(time.Hour),
	}

	_, err = f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)

	stored, err := f.userRepo.GetByID(testUserID)
	require.NoError(t, err)
	require.Equal(t, "second-access-token", stored.AccessToken)
	require.Equal(t, "upstream-refresh-token", stored.RefreshToken, "stored refresh token must survive")
}

func TestCompleteAuthorization_ExchangeFailureStoresNothing(t *testing.T) {
	f := setupTestFixture(t)
	f.upstream.exchangeErr = errors.New("upstream timeout")

	_, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.ErrorIs(t, err, auth.UpstreamAuthErr)

	_, err = f.userRepo.GetByID(testUserID)
	require.Error(t, err, "no credential row may exist after a failed exchange")
}

func TestRefreshSession_RotatesRefreshToken(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)

	session, err := f.service.IssueSession(user)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)

	rotated, err := f.service.RefreshSession(session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

	// The redeemed token is single use.
	_, err = f.service.RefreshSession(session.RefreshToken)
	require.ErrorIs(t, err, auth.InvalidSessionErr)
}

func TestRefreshSession_UnknownToken(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.RefreshSession("never-issued")
	require.ErrorIs(t, err, auth.InvalidSessionErr)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	f := setupTestFixture(t)

	user, err := f.service.CompleteAuthorization(context.Background(), testCode, testState, testState)
	require.NoError(t, err)
	session, err := f.service.IssueSession(user)
	require.NoError(t, err)

	f.service.Logout(session.RefreshToken)

	_, err = f.service.RefreshSession(session.RefreshToken)
	require.ErrorIs(t, err, auth.InvalidSessionErr)
}

func TestGetUser_NotFound(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.GetUser("missing-user")
	require.ErrorIs(t, err, auth.UserNotFoundErr)
}

func TestGenerateState_URLSafe(t *testing.T) {
	state, err := auth.GenerateState()
	require.NoError(t, err)
	require.False(t, strings.ContainsAny(state, "+/="), "state must be URL safe")
}
