package spotify

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TokenSource supplies a currently-valid upstream access token for a user.
// Implemented by the auth package's token guardian.
type TokenSource interface {
	GetValidAccessToken(ctx context.Context, userID string) (string, error)
}

// DelegatedClient executes API requests on behalf of a stored user: it
// resolves the user's access token through the TokenSource (propagating its
// errors unchanged) and issues the upstream GET.
type DelegatedClient struct {
	tokens TokenSource
	client *Client
}

// NewDelegatedClient creates a DelegatedClient.
func NewDelegatedClient(tokens TokenSource, client *Client) *DelegatedClient {
	return &DelegatedClient{tokens: tokens, client: client}
}

// Fetch issues a GET to an arbitrary endpoint path with the user's token.
func (d *DelegatedClient) Fetch(ctx context.Context, userID, endpoint string, params url.Values, result any) error {
	accessToken, err := d.tokens.GetValidAccessToken(ctx, userID)
	if err != nil {
		return err
	}
	return d.client.Get(ctx, accessToken, endpoint, params, result)
}

// Profile retrieves the user's own Spotify profile.
func (d *DelegatedClient) Profile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile
	if err := d.Fetch(ctx, userID, "/me", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// TopArtists retrieves up to limit top artists for the given time window.
func (d *DelegatedClient) TopArtists(ctx context.Context, userID string, timeRange TimeRange, limit int) ([]Artist, error) {
	params := url.Values{
		"limit":      {strconv.Itoa(clampLimit(limit, 50))},
		"time_range": {string(timeRange)},
	}
	var page TopArtistsPage
	if err := d.Fetch(ctx, userID, "/me/top/artists", params, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TopTracks retrieves up to limit top tracks for the given time window.
func (d *DelegatedClient) TopTracks(ctx context.Context, userID string, timeRange TimeRange, limit int) ([]Track, error) {
	params := url.Values{
		"limit":      {strconv.Itoa(clampLimit(limit, 50))},
		"time_range": {string(timeRange)},
	}
	var page TopTracksPage
	if err := d.Fetch(ctx, userID, "/me/top/tracks", params, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// RecentlyPlayed retrieves the user's recently played tracks.
func (d *DelegatedClient) RecentlyPlayed(ctx context.Context, userID string, limit int) ([]PlayHistoryItem, error) {
	params := url.Values{"limit": {strconv.Itoa(clampLimit(limit, 50))}}
	var page RecentlyPlayedPage
	if err := d.Fetch(ctx, userID, "/me/player/recently-played", params, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// SavedTracks retrieves one page of the user's saved library. The returned
// page carries the library's full Total regardless of limit.
func (d *DelegatedClient) SavedTracks(ctx context.Context, userID string, limit, offset int) (*SavedTracksPage, error) {
	params := url.Values{
		"limit":  {strconv.Itoa(clampLimit(limit, 50))},
		"offset": {strconv.Itoa(offset)},
	}
	var page SavedTracksPage
	if err := d.Fetch(ctx, userID, "/me/tracks", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AudioFeatures retrieves audio features for the given track ids in one
// batched call. Entries can be nil when Spotify has no analysis for a track.
func (d *DelegatedClient) AudioFeatures(ctx context.Context, userID string, trackIDs []string) ([]*AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return nil, errors.New("[DelegatedClient.AudioFeatures] no track ids")
	}
	if len(trackIDs) > featureBatchLimit {
		trackIDs = trackIDs[:featureBatchLimit]
	}

	params := url.Values{"ids": {strings.Join(trackIDs, ",")}}
	var page audioFeaturesPage
	if err := d.Fetch(ctx, userID, "/audio-features", params, &page); err != nil {
		return nil, err
	}
	return page.AudioFeatures, nil
}

func clampLimit(limit, max int) int {
	if limit <= 0 {
		return 20
	}
	if limit > max {
		return max
	}
	return limit
}
