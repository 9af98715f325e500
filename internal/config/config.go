package config

type Config interface {
	EnvConfig
	CorsConfig
	SpotifyConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDatabasePath() string
	GetDashboardURL() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type SpotifyConfig interface {
	GetSpotifyClientID() string
	GetSpotifyClientSecret() string
	GetSpotifyRedirectURL() string
}

type SessionConfig interface {
	GetSessionSigningKey() string
	GetSecureCookies() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Spotify
	Session
}

// New builds the runtime configuration. Values resolve in order: environment
// variable, config file entry, built-in default.
func New() Config {
	file := loadFileValues()
	return mainConfig{
		EnvVars: EnvVars{file: file},
		Cors:    Cors{file: file},
		Spotify: Spotify{file: file},
		Session: Session{file: file},
	}
}
