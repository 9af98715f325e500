package server

import (
	"net/http"
	"time"
)

// Cookie names shared between the login flow and the extraction policy.
const (
	CookieOAuthState   = "oauth_state"
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

const stateCookieMaxAge = 10 * time.Minute

// setStateCookie stores the anti-forgery state for the duration of the
// Spotify redirect round-trip.
func (s *Server) setStateCookie(w http.ResponseWriter, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieOAuthState,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setSessionCookies(w http.ResponseWriter, accessToken, refreshToken string, accessMaxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAccessToken,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   accessMaxAge,
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CookieRefreshToken,
		Value:    refreshToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken, CookieOAuthState} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.config.GetSecureCookies(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}
