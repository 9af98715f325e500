package server

import "net/http"

func (s *Server) initRoutes() {
	// Login flow
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.StdMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.CallbackHandler(), s.StdMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRefresh, ChainMiddleware(s.RefreshHandler(), s.StdMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.StdMiddleware()...))

	// Browser preflight for credentialed API calls
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, s.CorsMiddleware))

	// API routes (require an authenticated session)
	s.RegisterRouteHandler("GET "+RouteAPIUser, s.apiRoute(s.UserHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIUserTracks, s.apiRoute(s.TopTracksHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIUserArtists, s.apiRoute(s.TopArtistsHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIUserRecent, s.apiRoute(s.RecentlyPlayedHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIUserGenres, s.apiRoute(s.TopGenresHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIGenreProfile, s.apiRoute(s.GenreProfileHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIAudioFeatures, s.apiRoute(s.AudioFeaturesHandler()))
	s.RegisterRouteHandler("GET "+RouteAPIUserLibrary, s.apiRoute(s.LibraryStatsHandler()))
}

func (s *Server) apiRoute(handler http.HandlerFunc) http.HandlerFunc {
	mw := append(s.StdMiddleware(), s.RequireSession())
	return ChainMiddleware(handler, mw...)
}
