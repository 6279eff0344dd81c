package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/coverscafe/covers-server/internal/http/response"
)

// requireKey is middleware that guards mutating endpoints with the static
// bearer API key. With no key configured the endpoints do not exist as far
// as clients can tell.
func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			response.NotFound(w, "not found", s.logger)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format", s.logger)
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(s.apiKey)) != 1 {
			response.Unauthorized(w, "Invalid API key", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}
