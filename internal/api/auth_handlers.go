package api

import (
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/color"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleRegister creates a new user account.
// POST /api/v1/auth/register
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.RegisterRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	user, err := s.authService.Register(ctx, req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Created(w, userResponse(user), s.logger)
}

// handleLogin authenticates a user and sets the session cookie.
// POST /api/v1/auth/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.LoginRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}
	req.IPAddress = clientIP(r)
	req.UserAgent = r.UserAgent()

	result, err := s.authService.Login(ctx, req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	http.SetCookie(w, s.sessionCookie(result.Token, result.ExpiresAt))

	response.Success(w, map[string]any{
		"user":       userResponse(result.User),
		"expires_at": result.ExpiresAt,
	}, s.logger)
}

// handleLogout revokes the current session and clears the cookie.
// POST /api/v1/auth/logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.authService.LogoutToken(ctx, cookie.Value); err != nil {
			handleServiceError(w, err, s.logger)
			return
		}
	}

	// Expire the cookie either way
	http.SetCookie(w, s.sessionCookie("", time.Unix(0, 0)))

	response.Success(w, map[string]string{
		"message": "Logged out successfully",
	}, s.logger)
}

// handleGetCurrentUser returns the authenticated user's record.
// GET /api/v1/users/me
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)

	user, err := s.authService.GetUser(ctx, identity)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, userResponse(user), s.logger)
}

// sessionCookie builds the HTTP-only session cookie.
func (s *Server) sessionCookie(token string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

// userResponse filters a user record for API responses.
// The password hash never leaves the server.
func userResponse(u *domain.User) map[string]any {
	return map[string]any{
		"id":           u.ID,
		"username":     u.Username,
		"is_admin":     u.IsAdmin,
		"avatar_color": color.ForUser(u.ID),
		"created_at":   u.CreatedAt,
		"updated_at":   u.UpdatedAt,
	}
}
