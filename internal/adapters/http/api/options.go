package api

import "github.com/okian/spadl/pkg/logger"

// Default request limits.
const (
	defaultMaxBodyBytes   = 32 << 20
	defaultRateLimitRPS   = 50.0
	defaultRateLimitBurst = 100
)

// Option configures a Server.
type Option func(*Server)

// WithRateLimit limits each client to rps requests per second with the given
// burst. A non-positive rps disables rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimitRPS = rps
		if burst > 0 {
			s.rateLimitBurst = burst
		}
	}
}

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used for request failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
