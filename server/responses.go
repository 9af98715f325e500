package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/aspekts/musictracker/auth"
	"github.com/aspekts/musictracker/spotify"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service-layer error onto the HTTP status the
// browser should see: handshake failures are 400s, credential problems are
// 401s, upstream rejections keep their own status, transport failures are a
// 502 and anything else is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *spotify.APIError

	switch {
	case errors.Is(err, auth.StateMismatchErr), errors.Is(err, auth.MissingCodeErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.UserNotFoundErr),
		errors.Is(err, auth.TokenRefreshErr),
		errors.Is(err, auth.InvalidSessionErr):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &apiErr):
		writeError(w, apiErr.StatusCode, apiErr.Message)
	case errors.Is(err, spotify.TransportErr), errors.Is(err, auth.UpstreamAuthErr):
		writeError(w, http.StatusBadGateway, "upstream request failed")
	default:
		log.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
