package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/aspekts/musictracker/auth"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the authenticated session principal
const ContextKeyPrincipal ContextKey = "principal"

// credentialExtractor pulls a raw session access token out of a request, or
// returns "" when its source is absent. Extractors are tried in order; the
// first non-empty result wins. This is the single extraction policy for
// every protected route.
type credentialExtractor func(*http.Request) string

var credentialExtractors = []credentialExtractor{
	bearerToken,
	accessTokenCookie,
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func accessTokenCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieAccessToken)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// extractSessionToken applies the extraction policy to a request.
func extractSessionToken(r *http.Request) string {
	for _, extract := range credentialExtractors {
		if token := extract(r); token != "" {
			return token
		}
	}
	return ""
}

// RequireSession validates the session credential on API routes and injects
// the decoded principal into the request context.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			rawToken := extractSessionToken(r)
			if rawToken == "" {
				writeError(w, http.StatusUnauthorized, "missing session credential")
				return
			}

			introspection, err := s.sessions.Introspect(rawToken)
			if err != nil || !introspection.Active {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			principal := auth.PrincipalFromIntrospection(introspection)
			if principal == nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// principalFromContext recovers the principal injected by RequireSession.
func principalFromContext(ctx context.Context) *auth.SessionPrincipal {
	principal, _ := ctx.Value(ContextKeyPrincipal).(*auth.SessionPrincipal)
	return principal
}
