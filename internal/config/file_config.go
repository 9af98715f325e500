package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

const configFileEnvVar = "CONFIG_FILE"
const defaultConfigFile = "musictracker.toml"

// FileValues mirrors the optional TOML config file. Every field is a
// fallback only; a set environment variable always wins.
type FileValues struct {
	Port           string   `toml:"port"`
	AppName        string   `toml:"app_name"`
	DatabasePath   string   `toml:"database_path"`
	DashboardURL   string   `toml:"dashboard_url"`
	Env            string   `toml:"env"`
	AllowedOrigins []string `toml:"allowed_origins"`

	Spotify struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		RedirectURL  string `toml:"redirect_url"`
	} `toml:"spotify"`

	Session struct {
		SigningKey    string `toml:"signing_key"`
		SecureCookies bool   `toml:"secure_cookies"`
	} `toml:"session"`
}

// loadFileValues reads the TOML config file if one exists. A missing or
// unreadable file yields empty values rather than an error so env-only
// deployments need no file at all.
func loadFileValues() FileValues {
	path := os.Getenv(configFileEnvVar)
	if path == "" {
		path = defaultConfigFile
	}

	var values FileValues
	if _, err := os.Stat(path); err != nil {
		return values
	}
	if _, err := toml.DecodeFile(path, &values); err != nil {
		return FileValues{}
	}
	return values
}
