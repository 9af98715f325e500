package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aspekts/musictracker/token"
	tokenfakerepo "github.com/aspekts/musictracker/token/repofake"
	"github.com/aspekts/musictracker/users"
)

const (
	secretStr  = "1234"
	testIssuer = "musictracker"
)

func testUser() *users.User {
	return &users.User{
		ID:          "spotify-user-1",
		DisplayName: "John Doe",
		Email:       "john.doe@example.com",
		IsAdmin:     true,
	}
}

func newManager(t *testing.T, options ...token.ManagerOption) *token.Manager {
	t.Helper()
	options = append([]token.ManagerOption{token.WithIssuer(testIssuer)}, options...)
	return token.New(tokenfakerepo.NewFakeTokensRepo(), token.NewHMACSigner(secretStr), options...)
}

func TestCreateAccessToken_CarriesIdentityClaims(t *testing.T) {
	m := newManager(t)

	accessToken, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	introspection, err := m.Introspect(accessToken)
	require.NoError(t, err)
	require.True(t, introspection.Active)
	require.Equal(t, "spotify-user-1", introspection.Sub)
	require.Equal(t, "John Doe", introspection.Name)
	require.Equal(t, "john.doe@example.com", introspection.Email)
	require.True(t, introspection.Admin)
	require.Equal(t, testIssuer, introspection.Iss)
}

func TestIntrospect_ExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	m := newManager(t, token.WithNowFunc(func() time.Time { return past }))

	accessToken, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	verifier := newManager(t)
	introspection, _ := verifier.Introspect(accessToken)
	require.False(t, introspection.Active)
}

func TestIntrospect_TamperedToken(t *testing.T) {
	m := newManager(t)
	accessToken, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	otherKey := token.New(tokenfakerepo.NewFakeTokensRepo(), token.NewHMACSigner("different-secret"))
	introspection, _ := otherKey.Introspect(accessToken)
	require.False(t, introspection.Active)
}

func TestIntrospect_EmptyToken(t *testing.T) {
	m := newManager(t)

	introspection, err := m.Introspect("   ")
	require.NoError(t, err)
	require.False(t, introspection.Active)
}

func TestIssueSession_ReturnsPair(t *testing.T) {
	m := newManager(t)

	session, err := m.IssueSession(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.Len(t, session.RefreshToken, 64, "32 random bytes hex encoded")
	require.Equal(t, "bearer", session.TokenType)
	require.Equal(t, int(time.Hour.Seconds()), session.ExpiresIn)
}

func TestCreateRefreshToken_RotatesExistingToken(t *testing.T) {
	m := newManager(t)

	first, err := m.CreateRefreshToken("spotify-user-1")
	require.NoError(t, err)
	second, err := m.CreateRefreshToken("spotify-user-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Issuing the second token killed the first.
	_, err = m.RedeemRefreshToken(first)
	require.Error(t, err)

	rt, err := m.RedeemRefreshToken(second)
	require.NoError(t, err)
	require.Equal(t, "spotify-user-1", rt.UserID)
}

func TestRedeemRefreshToken_SingleUse(t *testing.T) {
	m := newManager(t)

	raw, err := m.CreateRefreshToken("spotify-user-1")
	require.NoError(t, err)

	_, err = m.RedeemRefreshToken(raw)
	require.NoError(t, err)

	_, err = m.RedeemRefreshToken(raw)
	require.Error(t, err, "a redeemed token is gone")
}

func TestRedeemRefreshToken_Expired(t *testing.T) {
	now := time.Now()
	m := newManager(t,
		token.WithTokenExpiry(time.Hour, 7*24*time.Hour),
		token.WithNowFunc(func() time.Time { return now }),
	)

	raw, err := m.CreateRefreshToken("spotify-user-1")
	require.NoError(t, err)

	now = now.Add(8 * 24 * time.Hour)
	_, err = m.RedeemRefreshToken(raw)
	require.Error(t, err)
}

func TestInvalidateRefreshToken(t *testing.T) {
	m := newManager(t)

	raw, err := m.CreateRefreshToken("spotify-user-1")
	require.NoError(t, err)

	m.InvalidateRefreshToken(raw)

	_, err = m.RedeemRefreshToken(raw)
	require.Error(t, err)
}
