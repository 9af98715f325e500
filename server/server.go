package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/aspekts/musictracker/auth"
	"github.com/aspekts/musictracker/insights"
	"github.com/aspekts/musictracker/internal/config"
	"github.com/aspekts/musictracker/spotify"
	"github.com/aspekts/musictracker/token"
)

// Server owns the HTTP surface: routing, middleware and the JSON handlers
// that sit in front of the auth, spotify and insights services.
type Server struct {
	env      string // Environment (e.g., "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	auth     *auth.AuthorizationService
	sessions *token.Manager
	api      *spotify.DelegatedClient
	insights *insights.Service
}

func New(
	cfg config.Config,
	authService *auth.AuthorizationService,
	sessions *token.Manager,
	api *spotify.DelegatedClient,
	insightsService *insights.Service,
) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     authService,
		sessions: sessions,
		api:      api,
		insights: insightsService,
	}
	s.env = cfg.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			log.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route registered")
		} else {
			log.Debug().Str("path", parts[0]).Msg("route registered")
		}
	}
}
