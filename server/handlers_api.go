package server

import (
	"net/http"
	"strconv"

	"github.com/aspekts/musictracker/spotify"
)

const defaultPageLimit = 20

// UserHandler returns the authenticated principal's profile.
func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		writeJSON(w, http.StatusOK, principal)
	}
}

// TopTracksHandler returns the user's top tracks for a time window.
func (s *Server) TopTracksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		timeRange := spotify.ParseTimeRange(r.URL.Query().Get("time_range"))

		tracks, err := s.api.TopTracks(r.Context(), principal.UserID, timeRange, queryLimit(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"time_range": timeRange, "items": tracks})
	}
}

// TopArtistsHandler returns the user's top artists for a time window.
func (s *Server) TopArtistsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		timeRange := spotify.ParseTimeRange(r.URL.Query().Get("time_range"))

		artists, err := s.api.TopArtists(r.Context(), principal.UserID, timeRange, queryLimit(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"time_range": timeRange, "items": artists})
	}
}

// RecentlyPlayedHandler returns the user's recently played tracks.
func (s *Server) RecentlyPlayedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())

		items, err := s.api.RecentlyPlayed(r.Context(), principal.UserID, queryLimit(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items})
	}
}

// TopGenresHandler returns the counted top genres for one time window.
func (s *Server) TopGenresHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		timeRange := spotify.ParseTimeRange(r.URL.Query().Get("time_range"))

		genres, err := s.insights.TopGenres(r.Context(), principal.UserID, timeRange)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, genres)
	}
}

// GenreProfileHandler returns the weighted genre profile across all
// windows.
func (s *Server) GenreProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())

		profile, err := s.insights.GenreProfile(r.Context(), principal.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// AudioFeaturesHandler returns averaged audio features for the user's top
// tracks in a window.
func (s *Server) AudioFeaturesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())
		timeRange := spotify.ParseTimeRange(r.URL.Query().Get("time_range"))

		profile, err := s.insights.AudioFeatureAverages(r.Context(), principal.UserID, timeRange)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// LibraryStatsHandler returns the saved-library totals.
func (s *Server) LibraryStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := principalFromContext(r.Context())

		stats, err := s.insights.LibraryStats(r.Context(), principal.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return defaultPageLimit
	}
	return limit
}
