package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login flow & session lifecycle
	RouteLogin    = "/login"
	RouteCallback = "/callback"
	RouteRefresh  = "/refresh"
	RouteLogout   = "/logout"

	// API Routes - profile and listening data
	RouteAPIUser          = "/api/user"
	RouteAPIUserTracks    = "/api/user/tracks"
	RouteAPIUserArtists   = "/api/user/artists"
	RouteAPIUserRecent    = "/api/user/recent"
	RouteAPIUserGenres    = "/api/user/genres"
	RouteAPIGenreProfile  = "/api/user/genres/profile"
	RouteAPIAudioFeatures = "/api/user/audio-features"
	RouteAPIUserLibrary   = "/api/user/library"
)
