package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/markdown"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// NoteService manages a user's notes.
type NoteService struct {
	store    *store.Store
	renderer *markdown.Renderer
	logger   *slog.Logger
}

// NewNoteService creates a new note service.
func NewNoteService(store *store.Store, renderer *markdown.Renderer, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// CreateNoteRequest contains the data for a new note.
// Title and content may both be empty.
type CreateNoteRequest struct {
	Title    string `json:"title" validate:"max=256"`
	Content  string `json:"content"`
	FolderID string `json:"folder_id"`
}

// UpdateNoteRequest contains replacement data for an existing note.
// An omitted folder_id moves the note back to Uncategorized.
type UpdateNoteRequest struct {
	Title    string `json:"title" validate:"max=256"`
	Content  string `json:"content"`
	FolderID string `json:"folder_id"`
}

// NoteList is a folder-filtered listing of the requester's notes.
type NoteList struct {
	Notes []*domain.Note `json:"notes"`
	// Folder is set when the listing was filtered by an existing folder.
	Folder *domain.Folder `json:"folder,omitempty"`
}

// NoteDetail is a single note with its rendered HTML.
type NoteDetail struct {
	*domain.Note
	ContentHTML string `json:"content_html"`
}

// ListNotes returns the requester's notes, most recently updated first.
//
// A non-empty folderID narrows the listing to notes filed in that folder.
// The filter compares the stored folder reference only; whether the folder
// itself belongs to the requester is not checked. A malformed folder id is
// rejected so the client can fall back to the unfiltered listing.
func (s *NoteService) ListNotes(ctx context.Context, identity domain.Identity, folderID string) (*NoteList, error) {
	if folderID != "" && !id.IsValid("folder", folderID) {
		return nil, domainerrors.InvalidFolderRef("invalid folder reference")
	}

	notes, err := s.store.ListNotesByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	list := &NoteList{Notes: notes}

	if folderID != "" {
		filtered := make([]*domain.Note, 0, len(notes))
		for _, note := range notes {
			if note.InFolder(folderID) {
				filtered = append(filtered, note)
			}
		}
		list.Notes = filtered

		// Surface the active folder's name when the folder exists
		folder, err := s.store.GetFolder(ctx, folderID)
		if err != nil && !errors.Is(err, store.ErrFolderNotFound) {
			return nil, fmt.Errorf("get folder: %w", err)
		}
		list.Folder = folder
	}

	return list, nil
}

// CreateNote creates a note owned by the requester. The folder reference,
// if present, is stored as given.
func (s *NoteService) CreateNote(ctx context.Context, identity domain.Identity, req CreateNoteRequest) (*domain.Note, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	noteID, err := id.Generate("note")
	if err != nil {
		return nil, fmt.Errorf("generate note ID: %w", err)
	}

	note := &domain.Note{
		ID:       noteID,
		Title:    req.Title,
		Content:  req.Content,
		OwnerID:  identity.ID,
		FolderID: req.FolderID,
	}
	note.InitTimestamps()

	if err := s.store.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Note created",
			"note_id", noteID,
			"user_id", identity.ID,
		)
	}

	return note, nil
}

// GetNote returns one of the requester's notes with rendered HTML.
// A foreign note and an absent note are indistinguishable to the caller.
func (s *NoteService) GetNote(ctx context.Context, identity domain.Identity, noteID string) (*NoteDetail, error) {
	note, err := s.getOwnedNote(ctx, identity, noteID)
	if err != nil {
		return nil, err
	}

	html, err := s.renderer.Render(note.Content)
	if err != nil {
		return nil, fmt.Errorf("render note: %w", err)
	}

	return &NoteDetail{Note: note, ContentHTML: html}, nil
}

// UpdateNote replaces a note's title, content, and folder reference.
// Ownership follows the same rule as GetNote.
func (s *NoteService) UpdateNote(ctx context.Context, identity domain.Identity, noteID string, req UpdateNoteRequest) (*domain.Note, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	note, err := s.getOwnedNote(ctx, identity, noteID)
	if err != nil {
		return nil, err
	}

	note.Title = req.Title
	note.Content = req.Content
	note.FolderID = req.FolderID

	if err := s.store.UpdateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}

	return note, nil
}

// DeleteNote removes one of the requester's notes. Deleting an absent or
// foreign note succeeds silently.
func (s *NoteService) DeleteNote(ctx context.Context, identity domain.Identity, noteID string) error {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil
		}
		return fmt.Errorf("get note: %w", err)
	}
	if note.OwnerID != identity.ID {
		return nil
	}

	if err := s.store.DeleteNote(ctx, noteID); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Note deleted",
			"note_id", noteID,
			"user_id", identity.ID,
		)
	}

	return nil
}

// SearchNotes returns the requester's notes whose title or content matches
// the query, treated as a case-insensitive regular expression. An empty
// query returns the unfiltered listing. Results carry no order guarantee.
func (s *NoteService) SearchNotes(ctx context.Context, identity domain.Identity, query string) ([]*domain.Note, error) {
	notes, err := s.store.ListNotesByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	if query == "" {
		return notes, nil
	}

	re, err := regexp.Compile("(?i)" + query)
	if err != nil {
		return nil, domainerrors.InvalidPattern("invalid search pattern").WithCause(err)
	}

	matched := make([]*domain.Note, 0, len(notes))
	for _, note := range notes {
		if re.MatchString(note.Title) || re.MatchString(note.Content) {
			matched = append(matched, note)
		}
	}

	return matched, nil
}

// getOwnedNote loads a note and hides it when it belongs to someone else.
func (s *NoteService) getOwnedNote(ctx context.Context, identity domain.Identity, noteID string) (*domain.Note, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNoteNotFound) {
			return nil, domainerrors.NotFound("note not found")
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	if note.OwnerID != identity.ID {
		return nil, domainerrors.NotFound("note not found")
	}
	return note, nil
}
