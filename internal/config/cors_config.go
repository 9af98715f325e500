package config

import (
	"os"
	"strings"
)

const allowedOriginsVar = "ALLOWED_ORIGINS"

type Cors struct {
	file FileValues
}

var _ CorsConfig = Cors{}

type AllowedOrigins map[string]struct{}
type nullValue = struct{}

func (a AllowedOrigins) IsAllowedOrigin(origin string) bool {
	_, ok := a[origin]
	return ok
}

func (a AllowedOrigins) String() string {
	var origins []string
	for k := range a {
		origins = append(origins, k)
	}
	return strings.Join(origins, ", ")
}

// GetAllowedOrigins resolves the CORS whitelist: the ALLOWED_ORIGINS env var
// (comma-separated) wins over the config file, which wins over the default
// local SPA origin.
func (c Cors) GetAllowedOrigins() AllowedOrigins {
	var entries []string
	if env := os.Getenv(allowedOriginsVar); env != "" {
		entries = strings.Split(env, ",")
	} else if len(c.file.AllowedOrigins) > 0 {
		entries = c.file.AllowedOrigins
	} else {
		entries = []string{"http://localhost:3001"}
	}

	origins := make(AllowedOrigins, len(entries))
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			origins[entry] = nullValue{}
		}
	}
	return origins
}

func (Cors) GetAllowedMethods() string {
	return "GET, POST, OPTIONS"
}

func (Cors) GetAllowedHeaders() string {
	return "Content-Type, Authorization"
}
