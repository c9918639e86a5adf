package server

import "net/http"

// OriginChecker gates websocket upgrades and CORS to a single configured
// origin; "*" disables the check.
type OriginChecker struct {
	allowedOrigin string
}

func NewOriginChecker(allowedOrigin string) *OriginChecker {
	return &OriginChecker{
		allowedOrigin: allowedOrigin,
	}
}

func (c *OriginChecker) Check(r *http.Request) bool {
	if c.allowedOrigin == "*" {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	return origin == c.allowedOrigin
}

func (c *OriginChecker) Allowed() string {
	return c.allowedOrigin
}
