package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleListFolders returns the requester's folders.
// GET /api/v1/folders
func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)

	folders, err := s.folderService.ListFolders(ctx, identity)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"folders": folders,
	}, s.logger)
}

// handleCreateFolder creates a folder.
// POST /api/v1/folders
func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)

	var req service.CreateFolderRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	folder, err := s.folderService.CreateFolder(ctx, identity, req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Created(w, folder, s.logger)
}

// handleRenameFolder renames a folder. Renaming a folder that does not
// exist (or is not yours) succeeds without effect.
// PATCH /api/v1/folders/{id}
func (s *Server) handleRenameFolder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	folderID := chi.URLParam(r, "id")

	var req service.RenameFolderRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.folderService.RenameFolder(ctx, identity, folderID, req); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
