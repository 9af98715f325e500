// Package insights derives listening-profile aggregates from a user's
// Spotify data: weighted genre rankings across time windows, simple genre
// counts, audio-feature averages and library totals.
package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"

	"github.com/aspekts/musictracker/spotify"
)

const (
	profileArtistsPerWindow = 50
	profileTopGenres        = 15
	countArtistLimit        = 30
	countTopGenres          = 10
	featureTrackLimit       = 20
)

// windowMultipliers weight recent listening more heavily than long-term
// history when building the comprehensive genre profile.
var windowMultipliers = map[spotify.TimeRange]float64{
	spotify.ShortTerm:  1.5,
	spotify.MediumTerm: 1.0,
	spotify.LongTerm:   0.5,
}

// profileWindows fixes the iteration order of the three windows.
var profileWindows = []spotify.TimeRange{spotify.ShortTerm, spotify.MediumTerm, spotify.LongTerm}

// API is the slice of the delegated Spotify client the aggregations need.
type API interface {
	TopArtists(ctx context.Context, userID string, timeRange spotify.TimeRange, limit int) ([]spotify.Artist, error)
	TopTracks(ctx context.Context, userID string, timeRange spotify.TimeRange, limit int) ([]spotify.Track, error)
	AudioFeatures(ctx context.Context, userID string, trackIDs []string) ([]*spotify.AudioFeatures, error)
	SavedTracks(ctx context.Context, userID string, limit, offset int) (*spotify.SavedTracksPage, error)
}

// Service computes aggregate views over a user's listening history.
type Service struct {
	api API
}

// NewService creates an insights Service.
func NewService(api API) *Service {
	return &Service{api: api}
}

// GenreWeight is one entry of a ranked genre list.
type GenreWeight struct {
	Genre  string
	Weight float64
}

// GenreRankings is an ordered genre ranking, highest weight first. It
// marshals as a JSON object whose keys appear in ranked order.
type GenreRankings []GenreWeight

// MarshalJSON emits the rankings as `{"genre": weight, ...}` preserving the
// slice order, which plain maps cannot do.
func (r GenreRankings) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, gw := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(gw.Genre)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(gw.Weight)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GenreProfile is the comprehensive weighted-genre view.
type GenreProfile struct {
	Genres GenreRankings `json:"genres"`
}

// GenreProfile builds the weighted genre ranking across the short, medium
// and long term windows. Each artist contributes `1 - rank/n` scaled by the
// window's multiplier to every genre tag it carries. A window whose fetch
// fails is skipped; if all three fail the profile is empty rather than an
// error.
func (s *Service) GenreProfile(ctx context.Context, userID string) (*GenreProfile, error) {
	weights := make(map[string]float64)
	for _, window := range profileWindows {
		artists, err := s.api.TopArtists(ctx, userID, window, profileArtistsPerWindow)
		if err != nil {
			continue
		}
		multiplier := windowMultipliers[window]
		n := float64(len(artists))
		for i, artist := range artists {
			positionWeight := 1 - float64(i)/n
			for _, genre := range artist.Genres {
				weights[genre] += positionWeight * multiplier
			}
		}
	}
	return &GenreProfile{Genres: rankGenres(weights, profileTopGenres)}, nil
}

// TopGenres is the simple occurrence-count genre view for one window.
type TopGenres struct {
	TimeRange string        `json:"time_range"`
	Genres    GenreRankings `json:"genres"`
	TopGenre  string        `json:"top_genre"`
}

// TopGenres counts genre tag occurrences across the user's top artists for
// a single window. TopGenre is "Unknown" when no artists or tags were found.
func (s *Service) TopGenres(ctx context.Context, userID string, timeRange spotify.TimeRange) (*TopGenres, error) {
	artists, err := s.api.TopArtists(ctx, userID, timeRange, countArtistLimit)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]float64)
	for _, artist := range artists {
		for _, genre := range artist.Genres {
			counts[genre]++
		}
	}

	ranked := rankGenres(counts, countTopGenres)
	top := "Unknown"
	if len(ranked) > 0 {
		top = ranked[0].Genre
	}
	return &TopGenres{TimeRange: string(timeRange), Genres: ranked, TopGenre: top}, nil
}

// AudioProfile is the averaged audio-feature view for one window.
type AudioProfile struct {
	TimeRange        string  `json:"time_range"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
	TrackCount       int     `json:"track_count"`
}

// AudioFeatureAverages fetches the user's top tracks for the window and
// averages the numeric audio features across them. Tracks for which Spotify
// returns no analysis are discarded. Zero resolvable tracks yields a
// zero-valued profile, not an error.
func (s *Service) AudioFeatureAverages(ctx context.Context, userID string, timeRange spotify.TimeRange) (*AudioProfile, error) {
	profile := &AudioProfile{TimeRange: string(timeRange)}

	tracks, err := s.api.TopTracks(ctx, userID, timeRange, featureTrackLimit)
	if err != nil {
		return nil, err
	}
	trackIDs := make([]string, 0, len(tracks))
	for _, track := range tracks {
		if track.ID != "" {
			trackIDs = append(trackIDs, track.ID)
		}
	}
	if len(trackIDs) == 0 {
		return profile, nil
	}

	features, err := s.api.AudioFeatures(ctx, userID, trackIDs)
	if err != nil {
		return nil, err
	}
	count := 0
	for _, f := range features {
		if f == nil {
			continue
		}
		profile.Energy += f.Energy
		profile.Danceability += f.Danceability
		profile.Valence += f.Valence
		profile.Acousticness += f.Acousticness
		profile.Instrumentalness += f.Instrumentalness
		profile.Liveness += f.Liveness
		profile.Speechiness += f.Speechiness
		profile.Tempo += f.Tempo
		count++
	}
	if count == 0 {
		return profile, nil
	}

	divisor := float64(count)
	profile.Energy /= divisor
	profile.Danceability /= divisor
	profile.Valence /= divisor
	profile.Acousticness /= divisor
	profile.Instrumentalness /= divisor
	profile.Liveness /= divisor
	profile.Speechiness /= divisor
	profile.Tempo /= divisor
	profile.TrackCount = count
	return profile, nil
}

// LibraryStats summarises the user's saved-track library.
type LibraryStats struct {
	TotalTracks int `json:"total_tracks"`
}

// LibraryStats reads the library's total size from a single saved-tracks
// page.
func (s *Service) LibraryStats(ctx context.Context, userID string) (*LibraryStats, error) {
	page, err := s.api.SavedTracks(ctx, userID, 1, 0)
	if err != nil {
		return nil, err
	}
	return &LibraryStats{TotalTracks: page.Total}, nil
}

// rankGenres sorts the accumulated weights descending, breaking ties
// alphabetically, and keeps the top limit entries.
func rankGenres(weights map[string]float64, limit int) GenreRankings {
	ranked := make(GenreRankings, 0, len(weights))
	for genre, weight := range weights {
		ranked = append(ranked, GenreWeight{Genre: genre, Weight: weight})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Weight != ranked[j].Weight {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Genre < ranked[j].Genre
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
