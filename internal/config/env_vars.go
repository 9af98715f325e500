package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar         = "PORT"
	appNameVar         = "APP_NAME"
	databasePathVar    = "DATABASE_PATH"
	dashboardURLVar    = "DASHBOARD_URL"
	spotifyClientIDVar = "SPOTIFY_CLIENT_ID"
	spotifySecretVar   = "SPOTIFY_CLIENT_SECRET"
	spotifyRedirectVar = "SPOTIFY_REDIRECT_URL"
	signingKeyVar      = "SESSION_SIGNING_KEY"
	secureCookiesVar   = "SECURE_COOKIES"
)

type EnvVars struct {
	file FileValues
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, fallback(e.file.Port, "8080"))
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return GetEnv(appNameVar, fallback(e.file.AppName, "Music Tracker"))
}

func (e EnvVars) GetDatabasePath() string {
	return GetEnv(databasePathVar, fallback(e.file.DatabasePath, "./data/musictracker.db"))
}

// GetDashboardURL is where the browser lands after a completed login.
func (e EnvVars) GetDashboardURL() string {
	return GetEnv(dashboardURLVar, fallback(e.file.DashboardURL, "http://localhost:3001/dashboard"))
}

func (e EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		env = fallback(e.file.Env, "DEV")
	}
	return env
}

type Spotify struct {
	file FileValues
}

var _ SpotifyConfig = Spotify{}

func (s Spotify) GetSpotifyClientID() string {
	return GetEnv(spotifyClientIDVar, s.file.Spotify.ClientID)
}

func (s Spotify) GetSpotifyClientSecret() string {
	return GetEnv(spotifySecretVar, s.file.Spotify.ClientSecret)
}

func (s Spotify) GetSpotifyRedirectURL() string {
	return GetEnv(spotifyRedirectVar, fallback(s.file.Spotify.RedirectURL, "http://localhost:8080/callback"))
}

type Session struct {
	file FileValues
}

var _ SessionConfig = Session{}

func (s Session) GetSessionSigningKey() string {
	return GetEnv(signingKeyVar, s.file.Session.SigningKey)
}

func (s Session) GetSecureCookies() bool {
	if v := os.Getenv(secureCookiesVar); v != "" {
		return v == "true" || v == "1"
	}
	return s.file.Session.SecureCookies
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func fallback(fileValue, defaultValue string) string {
	if fileValue != "" {
		return fileValue
	}
	return defaultValue
}
