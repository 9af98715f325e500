package spotify

import (
	"errors"
	"fmt"
)

var (
	// TransportErr marks failures before an HTTP status was received
	// (DNS, timeout, connection reset).
	TransportErr = errors.New("upstream transport failure")
)

// APIError is a non-2xx response from the Spotify Web API. Message comes
// from the upstream error envelope when it parses, otherwise the bare
// status text.
type APIError struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify API error: status %d: %s", e.StatusCode, e.Message)
}
