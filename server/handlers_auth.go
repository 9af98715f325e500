package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aspekts/musictracker/auth"
)

// LoginHandler starts the Spotify authorization flow: it generates the
// anti-forgery state, parks it in a short-lived cookie and redirects the
// browser to the Spotify consent page.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectURL, state, err := s.auth.BeginAuthorization()
		if err != nil {
			log.Error().Err(err).Msg("failed to begin authorization")
			writeError(w, http.StatusInternalServerError, "failed to begin authorization")
			return
		}

		s.setStateCookie(w, state)
		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// CallbackHandler completes the flow when Spotify redirects back: it checks
// the state against the cookie, exchanges the code, upserts the credential
// record, issues the local session pair and sends the browser on to the
// dashboard.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if errorParam := r.URL.Query().Get("error"); errorParam != "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("authorization denied: %s", errorParam))
			return
		}

		var expectedState string
		if cookie, err := r.Cookie(CookieOAuthState); err == nil {
			expectedState = cookie.Value
		}

		code, returnedState := auth.CallbackParams(r.URL.Query())
		user, err := s.auth.CompleteAuthorization(r.Context(), code, returnedState, expectedState)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		session, err := s.auth.IssueSession(user)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue session")
			writeError(w, http.StatusInternalServerError, "failed to issue session")
			return
		}

		s.setSessionCookies(w, session.AccessToken, session.RefreshToken, session.ExpiresIn)
		http.Redirect(w, r, s.config.GetDashboardURL(), http.StatusFound)
	}
}

// RefreshHandler rotates the session refresh token into a new pair. The
// token comes from the cookie or, for non-browser clients, the JSON body.
func (s *Server) RefreshHandler() http.HandlerFunc {
	type refreshRequest struct {
		RefreshToken string `json:"refresh_token"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var refreshToken string
		if cookie, err := r.Cookie(CookieRefreshToken); err == nil {
			refreshToken = cookie.Value
		}
		if refreshToken == "" {
			var body refreshRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				refreshToken = body.RefreshToken
			}
		}
		if refreshToken == "" {
			writeError(w, http.StatusUnauthorized, "missing refresh token")
			return
		}

		session, err := s.auth.RefreshSession(refreshToken)
		if err != nil {
			s.clearSessionCookies(w)
			writeServiceError(w, err)
			return
		}

		s.setSessionCookies(w, session.AccessToken, session.RefreshToken, session.ExpiresIn)
		writeJSON(w, http.StatusOK, session)
	}
}

// LogoutHandler revokes the session refresh token and clears the cookies.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(CookieRefreshToken); err == nil && cookie.Value != "" {
			s.auth.Logout(cookie.Value)
		}
		s.clearSessionCookies(w)
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}
