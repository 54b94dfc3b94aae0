package api

import (
	"encoding/json/v2"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// handleListNotes returns the requester's notes, optionally filtered by
// folder via the ?folder= query parameter.
// GET /api/v1/notes
func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	folderID := r.URL.Query().Get("folder")

	list, err := s.noteService.ListNotes(ctx, identity, folderID)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, list, s.logger)
}

// handleCreateNote creates a note.
// POST /api/v1/notes
func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)

	var req service.CreateNoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	note, err := s.noteService.CreateNote(ctx, identity, req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Created(w, note, s.logger)
}

// handleGetNote returns a single note with rendered HTML.
// GET /api/v1/notes/{id}
func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	noteID := chi.URLParam(r, "id")

	detail, err := s.noteService.GetNote(ctx, identity, noteID)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, detail, s.logger)
}

// handleUpdateNote replaces a note's title, content, and folder.
// PUT /api/v1/notes/{id}
func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	noteID := chi.URLParam(r, "id")

	var req service.UpdateNoteRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	note, err := s.noteService.UpdateNote(ctx, identity, noteID, req)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, note, s.logger)
}

// handleDeleteNote deletes a note. Absent or foreign notes delete
// "successfully" with no effect.
// DELETE /api/v1/notes/{id}
func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	noteID := chi.URLParam(r, "id")

	if err := s.noteService.DeleteNote(ctx, identity, noteID); err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}

// handleSearchNotes searches the requester's notes.
// GET /api/v1/notes/search?q=
func (s *Server) handleSearchNotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := getIdentity(ctx)
	query := r.URL.Query().Get("q")

	notes, err := s.noteService.SearchNotes(ctx, identity, query)
	if err != nil {
		handleServiceError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]any{
		"notes": notes,
		"query": query,
	}, s.logger)
}
