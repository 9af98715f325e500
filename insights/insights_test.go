package insights_test

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aspekts/musictracker/insights"
	"github.com/aspekts/musictracker/spotify"
)

const testUserID = "spotify-user-1"

// fakeAPI serves canned listening data per time window.
type fakeAPI struct {
	artistsByWindow map[spotify.TimeRange][]spotify.Artist
	artistErrors    map[spotify.TimeRange]error
	tracks          []spotify.Track
	tracksErr       error
	features        []*spotify.AudioFeatures
	featuresErr     error
	savedPage       *spotify.SavedTracksPage
	savedErr        error
}

func (f *fakeAPI) TopArtists(_ context.Context, _ string, timeRange spotify.TimeRange, _ int) ([]spotify.Artist, error) {
	if err := f.artistErrors[timeRange]; err != nil {
		return nil, err
	}
	return f.artistsByWindow[timeRange], nil
}

func (f *fakeAPI) TopTracks(_ context.Context, _ string, _ spotify.TimeRange, _ int) ([]spotify.Track, error) {
	return f.tracks, f.tracksErr
}

func (f *fakeAPI) AudioFeatures(_ context.Context, _ string, _ []string) ([]*spotify.AudioFeatures, error) {
	return f.features, f.featuresErr
}

func (f *fakeAPI) SavedTracks(_ context.Context, _ string, _, _ int) (*spotify.SavedTracksPage, error) {
	return f.savedPage, f.savedErr
}

func artistsWithGenres(genres ...[]string) []spotify.Artist {
	artists := make([]spotify.Artist, len(genres))
	for i, g := range genres {
		artists[i] = spotify.Artist{ID: "artist", Name: "Artist", Genres: g}
	}
	return artists
}

// fiftyArtists builds a full window where only the rank-0 artist carries the
// given genre.
func fiftyArtists(topGenre string) []spotify.Artist {
	artists := make([]spotify.Artist, 50)
	artists[0] = spotify.Artist{Name: "Top Artist", Genres: []string{topGenre}}
	for i := 1; i < 50; i++ {
		artists[i] = spotify.Artist{Name: "Filler"}
	}
	return artists
}

func TestGenreProfile_TopShortTermArtistWeight(t *testing.T) {
	api := &fakeAPI{
		artistsByWindow: map[spotify.TimeRange][]spotify.Artist{
			spotify.ShortTerm: fiftyArtists("shoegaze"),
		},
		artistErrors: map[spotify.TimeRange]error{
			spotify.MediumTerm: errors.New("unavailable"),
			spotify.LongTerm:   errors.New("unavailable"),
		},
	}
	service := insights.NewService(api)

	profile, err := service.GenreProfile(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, profile.Genres, 1)
	require.Equal(t, "shoegaze", profile.Genres[0].Genre)
	require.Equal(t, 1.5, profile.Genres[0].Weight, "(1 - 0/50) * 1.5")
}

func TestGenreProfile_WindowMultipliers(t *testing.T) {
	// One artist per window, all rank 0 of a window of one, same genre.
	single := artistsWithGenres([]string{"jazz"})
	api := &fakeAPI{
		artistsByWindow: map[spotify.TimeRange][]spotify.Artist{
			spotify.ShortTerm:  single,
			spotify.MediumTerm: single,
			spotify.LongTerm:   single,
		},
	}
	service := insights.NewService(api)

	profile, err := service.GenreProfile(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, profile.Genres, 1)
	require.InEpsilon(t, 3.0, profile.Genres[0].Weight, 1e-9, "1.5 + 1.0 + 0.5")
}

func TestGenreProfile_SkipsFailedWindows(t *testing.T) {
	api := &fakeAPI{
		artistsByWindow: map[spotify.TimeRange][]spotify.Artist{
			spotify.MediumTerm: artistsWithGenres([]string{"ambient"}),
		},
		artistErrors: map[spotify.TimeRange]error{
			spotify.ShortTerm: errors.New("rate limited"),
			spotify.LongTerm:  errors.New("rate limited"),
		},
	}
	service := insights.NewService(api)

	profile, err := service.GenreProfile(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, profile.Genres, 1)
	require.Equal(t, "ambient", profile.Genres[0].Genre)
}

func TestGenreProfile_AllWindowsFailed(t *testing.T) {
	failure := errors.New("unavailable")
	api := &fakeAPI{
		artistErrors: map[spotify.TimeRange]error{
			spotify.ShortTerm:  failure,
			spotify.MediumTerm: failure,
			spotify.LongTerm:   failure,
		},
	}
	service := insights.NewService(api)

	profile, err := service.GenreProfile(context.Background(), testUserID)
	require.NoError(t, err, "total failure yields an empty profile, not an error")
	require.Empty(t, profile.Genres)
}

func TestGenreProfile_CapsAtFifteenGenres(t *testing.T) {
	genres := make([]string, 0, 20)
	for _, suffix := range "abcdefghijklmnopqrst" {
		genres = append(genres, "genre-"+string(suffix))
	}
	api := &fakeAPI{
		artistsByWindow: map[spotify.TimeRange][]spotify.Artist{
			spotify.MediumTerm: artistsWithGenres(genres),
		},
	}
	service := insights.NewService(api)

	profile, err := service.GenreProfile(context.Background(), testUserID)
	require.NoError(t, err)
	require.Len(t, profile.Genres, 15)
}

func TestGenreRankings_MarshalPreservesOrder(t *testing.T) {
	rankings := insights.GenreRankings{
		{Genre: "zydeco", Weight: 3},
		{Genre: "ambient", Weight: 2},
		{Genre: "bossa nova", Weight: 1},
	}

	data, err := json.Marshal(rankings)
	require.NoError(t, err)
	require.JSONEq(t, `{"zydeco":3,"ambient":2,"bossa nova":1}`, string(data))
	require.Equal(t, `{"zydeco":3,"ambient":2,"bossa nova":1}`, string(data), "key order must follow the ranking")
}

func TestTopGenres_CountsOccurrences(t *testing.T) {
	api := &fakeAPI{
		artistsByWindow: map[spotify.TimeRange][]spotify.Artist{
			spotify.MediumTerm: artistsWithGenres(
				[]string{"indie rock", "shoegaze"},
				[]string{"indie rock"},
				[]string{"shoegaze"},
				[]string{"indie rock"},
			),
		},
	}
	service := insights.NewService(api)

	result, err := service.TopGenres(context.Background(), testUserID, spotify.MediumTerm)
	require.NoError(t, err)
	require.Equal(t, "indie rock", result.TopGenre)
	require.Equal(t, float64(3), result.Genres[0].Weight)
	require.Equal(t, float64(2), result.Genres[1].Weight)
}

func TestTopGenres_NoArtists(t *testing.T) {
	service := insights.NewService(&fakeAPI{})

	result, err := service.TopGenres(context.Background(), testUserID, spotify.MediumTerm)
	require.NoError(t, err)
	require.Empty(t, result.Genres)
	require.Equal(t, "Unknown", result.TopGenre)
}

func TestTopGenres_FetchError(t *testing.T) {
	failure := errors.New("unavailable")
	api := &fakeAPI{
		artistErrors: map[spotify.TimeRange]error{spotify.ShortTerm: failure},
	}
	service := insights.NewService(api)

	_, err := service.TopGenres(context.Background(), testUserID, spotify.ShortTerm)
	require.ErrorIs(t, err, failure)
}

func TestAudioFeatureAverages_MeansAcrossTracks(t *testing.T) {
	api := &fakeAPI{
		tracks: []spotify.Track{{ID: "t1"}, {ID: "t2"}},
		features: []*spotify.AudioFeatures{
			{ID: "t1", Energy: 0.2, Danceability: 0.4, Tempo: 100},
			{ID: "t2", Energy: 0.6, Danceability: 0.8, Tempo: 140},
		},
	}
	service := insights.NewService(api)

	profile, err := service.AudioFeatureAverages(context.Background(), testUserID, spotify.MediumTerm)
	require.NoError(t, err)
	require.Equal(t, 2, profile.TrackCount)
	require.InEpsilon(t, 0.4, profile.Energy, 1e-9)
	require.InEpsilon(t, 0.6, profile.Danceability, 1e-9)
	require.InEpsilon(t, 120.0, profile.Tempo, 1e-9)
	require.Zero(t, profile.Instrumentalness)
}

func TestAudioFeatureAverages_DropsNullEntries(t *testing.T) {
	api := &fakeAPI{
		tracks: []spotify.Track{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}},
		features: []*spotify.AudioFeatures{
			{ID: "t1", Valence: 0.3},
			nil, // no analysis for t2
			{ID: "t3", Valence: 0.9},
		},
	}
	service := insights.NewService(api)

	profile, err := service.AudioFeatureAverages(context.Background(), testUserID, spotify.MediumTerm)
	require.NoError(t, err)
	require.Equal(t, 2, profile.TrackCount)
	require.InEpsilon(t, 0.6, profile.Valence, 1e-9)
}

func TestAudioFeatureAverages_NoTracks(t *testing.T) {
	service := insights.NewService(&fakeAPI{})

	profile, err := service.AudioFeatureAverages(context.Background(), testUserID, spotify.ShortTerm)
	require.NoError(t, err, "zero tracks is a defined empty state")
	require.Zero(t, profile.TrackCount)
	require.Zero(t, profile.Energy)
	require.Zero(t, profile.Tempo)
}

func TestAudioFeatureAverages_AllEntriesNull(t *testing.T) {
	api := &fakeAPI{
		tracks:   []spotify.Track{{ID: "t1"}},
		features: []*spotify.AudioFeatures{nil},
	}
	service := insights.NewService(api)

	profile, err := service.AudioFeatureAverages(context.Background(), testUserID, spotify.MediumTerm)
	require.NoError(t, err)
	require.Zero(t, profile.TrackCount)
	require.False(t, math.IsNaN(profile.Energy))
}

func TestLibraryStats_ReadsTotal(t *testing.T) {
	api := &fakeAPI{savedPage: &spotify.SavedTracksPage{Total: 1234}}
	service := insights.NewService(api)

	stats, err := service.LibraryStats(context.Background(), testUserID)
	require.NoError(t, err)
	require.Equal(t, 1234, stats.TotalTracks)
}
