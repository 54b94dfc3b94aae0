package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
)

// handleAdminListUsers returns all users.
// GET /api/v1/admin/users
func (s *Server) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := s.adminService.ListUsers(ctx)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	// Filter out sensitive fields
	sanitized := make([]map[string]any, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, userResponse(u))
	}

	response.Success(w, map[string]any{
		"users": sanitized,
	}, s.logger)
}

// handleAdminConfirmDeleteUser returns the deletion preview for a user.
// GET /api/v1/admin/users/{id}
func (s *Server) handleAdminConfirmDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	targetUserID := chi.URLParam(r, "id")

	preview, err := s.adminService.ConfirmDeleteUser(ctx, identity, targetUserID)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"user":         userResponse(preview.User),
		"note_count":   preview.NoteCount,
		"folder_count": preview.FolderCount,
	}, s.logger)
}

// handleAdminDeleteUser deletes a user and everything they own.
// DELETE /api/v1/admin/users/{id}
func (s *Server) handleAdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	targetUserID := chi.URLParam(r, "id")

	if err := s.adminService.DeleteUser(ctx, identity, targetUserID); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleAdminToggleAdmin flips a user's admin flag.
// POST /api/v1/admin/users/{id}/toggle-admin
func (s *Server) handleAdminToggleAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	targetUserID := chi.URLParam(r, "id")

	if err := s.adminService.ToggleAdmin(ctx, identity, targetUserID); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		response.Error(w, domainErr.HTTPStatus(), string(domainErr.Code), domainErr.Message, logger)
		return
	}

	// Anything uncoded is a storage-transport failure
	if logger != nil {
		logger.Error("Unhandled service error", "error", err)
	}
	response.Error(w, http.StatusServiceUnavailable, string(domainerrors.CodeStorageUnavailable), "storage unavailable", logger)
}
