package server

import (
	"net/http"
	"time"

	"github.com/agbru/bigadd/internal/logging"
	"github.com/google/uuid"
)

// RequestIDHeader carries the id of a request, given by the client or
// assigned here.
const RequestIDHeader = "X-Request-ID"

// WithRateLimiter sets a custom rate limiter for the server.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		s.rateLimiter = rl
	}
}

// WithSecurityConfig sets a custom security configuration for the server.
func WithSecurityConfig(config SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = config
	}
}

// WithMaxDigits caps the operand width /add accepts.
//
// Parameters:
//   - maxDigits: The widest operand accepted (0 for no limit).
//
// Returns:
//   - Option: A functional option that configures the limit.
func WithMaxDigits(maxDigits int) Option {
	return func(s *Server) {
		s.securityConfig.MaxDigits = maxDigits
	}
}

// loggingMiddleware tags the request with an id and logs its start and
// completion.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		s.logger.Debug("request started",
			logging.String("id", id), logging.String("method", r.Method),
			logging.String("path", r.URL.Path), logging.String("remote", r.RemoteAddr))

		next(w, r)

		s.logger.Info("request completed",
			logging.String("id", id), logging.String("method", r.Method),
			logging.String("path", r.URL.Path), logging.String("duration", time.Since(start).String()))
	}
}
