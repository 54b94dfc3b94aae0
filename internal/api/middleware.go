package api

import (
	"context"
	"net"
	"net/http"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const contextKeyIdentity contextKey = "identity"

// requireAuth is middleware that resolves the session cookie into an
// identity and attaches it to the request context. Every failure mode
// (missing cookie, bad token, dead session, deleted user) looks the same
// to the client.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			response.Unauthorized(w, "Authentication required", s.logger)
			return
		}

		identity, err := s.authService.ResolveSession(r.Context(), cookie.Value)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired session", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyIdentity, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin is middleware that ensures the authenticated user is an
// admin. Must be used after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := getIdentity(r.Context())
		if !identity.IsAdmin {
			response.Forbidden(w, "Admin access required", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rateLimitByIP throttles a route per client IP. Sits in front of the
// credential endpoints to slow down guessing.
func (s *Server) rateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.Allow(clientIP(r)) {
			response.TooManyRequests(w, "Too many attempts, slow down", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getIdentity extracts the authenticated identity from request context.
// Returns the zero value if not authenticated.
func getIdentity(ctx context.Context) domain.Identity {
	if identity, ok := ctx.Value(contextKeyIdentity).(domain.Identity); ok {
		return identity
	}
	return domain.Identity{}
}

// clientIP returns the request's client address without the port.
// RealIP middleware has already folded proxy headers into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
