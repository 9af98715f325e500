// Spotify Web API response types based on
// https://developer.spotify.com/documentation/web-api/reference/
package spotify

// TimeRange is one of the three listening-history windows Spotify exposes.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"  // ~4 weeks
	MediumTerm TimeRange = "medium_term" // ~6 months
	LongTerm   TimeRange = "long_term"   // several years
)

// ParseTimeRange maps a query parameter onto a known window, defaulting to
// medium_term for anything unrecognised.
func ParseTimeRange(s string) TimeRange {
	switch TimeRange(s) {
	case ShortTerm, MediumTerm, LongTerm:
		return TimeRange(s)
	default:
		return MediumTerm
	}
}

type followers struct {
	Total int `json:"total"`
}

// UserProfile represents the current user's Spotify profile.
type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist, including its genre tags.
type Artist struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Genres     []string `json:"genres"`
	Images     []Image  `json:"images"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// AudioFeatures holds the numeric audio analysis fields for one track.
type AudioFeatures struct {
	ID               string  `json:"id"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Valence          float64 `json:"valence"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Speechiness      float64 `json:"speechiness"`
	Tempo            float64 `json:"tempo"`
}

// TopArtistsPage is the paginated envelope for /me/top/artists.
type TopArtistsPage struct {
	Items  []Artist `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	Next   *string  `json:"next"`
}

// TopTracksPage is the paginated envelope for /me/top/tracks.
type TopTracksPage struct {
	Items  []Track `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// PlayHistoryItem is one entry of the recently-played feed.
type PlayHistoryItem struct {
	PlayedAt string `json:"played_at"`
	Track    Track  `json:"track"`
}

// RecentlyPlayedPage is the envelope for /me/player/recently-played.
type RecentlyPlayedPage struct {
	Items []PlayHistoryItem `json:"items"`
	Limit int               `json:"limit"`
	Next  *string           `json:"next"`
}

// SavedTrack is a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// SavedTracksPage is the paginated envelope for /me/tracks. Total is the
// full library size regardless of the requested page.
type SavedTracksPage struct {
	Items  []SavedTrack `json:"items"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Next   *string      `json:"next"`
}

// audioFeaturesPage wraps the batch audio-features response. Entries can be
// null when Spotify declines to analyse a track.
type audioFeaturesPage struct {
	AudioFeatures []*AudioFeatures `json:"audio_features"`
}

// errorEnvelope is Spotify's error body: {"error":{"status":..,"message":..}}.
type errorEnvelope struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
