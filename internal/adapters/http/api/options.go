package api

import (
	"strings"
	"time"

	"github.com/okian/platformer/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithAPIPath sets the prefix of the authenticated routes.
func WithAPIPath(path string) Option {
	return func(s *Server) {
		path = "/" + strings.Trim(path, "/")
		if path != "/" {
			s.apiPath = path
		}
	}
}

// WithCookieName names the token cookie and header.
func WithCookieName(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.cookieName = name
		}
	}
}

// WithAllowedOrigins sets the CORS allowlist.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		for _, o := range origins {
			s.origins[o] = struct{}{}
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for cookie expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}
