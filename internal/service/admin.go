package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	domainerrors "github.com/inkwellapp/inkwell-server/internal/errors"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// AdminService implements account governance. The admin gate itself lives
// in the router middleware; every operation here still guards against an
// admin acting on their own account.
type AdminService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewAdminService creates a new admin service.
func NewAdminService(store *store.Store, logger *slog.Logger) *AdminService {
	return &AdminService{
		store:  store,
		logger: logger,
	}
}

// DeleteUserPreview describes what an account deletion would remove.
type DeleteUserPreview struct {
	User        *domain.User `json:"user"`
	NoteCount   int          `json:"note_count"`
	FolderCount int          `json:"folder_count"`
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ConfirmDeleteUser returns the deletion preview for a target account.
// Fails with NotFound when the target does not exist and refuses to
// preview the actor's own account.
func (s *AdminService) ConfirmDeleteUser(ctx context.Context, actor domain.Identity, userID string) (*DeleteUserPreview, error) {
	if userID == actor.ID {
		return nil, domainerrors.SelfActionForbidden("you cannot delete your own account")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	notes, err := s.store.ListNotesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	folders, err := s.store.ListFoldersByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	return &DeleteUserPreview{
		User:        user,
		NoteCount:   len(notes),
		FolderCount: len(folders),
	}, nil
}

// DeleteUser removes an account and everything it owns: notes first, then
// folders, then the user record, then any live sessions. The steps are
// best-effort with no rollback; a failure partway can leave orphaned data.
// Deleting an absent account succeeds, the self guard fires regardless.
func (s *AdminService) DeleteUser(ctx context.Context, actor domain.Identity, userID string) error {
	if userID == actor.ID {
		return domainerrors.SelfActionForbidden("you cannot delete your own account")
	}

	noteCount, err := s.store.DeleteNotesByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete notes: %w", err)
	}

	folderCount, err := s.store.DeleteFoldersByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	// Sessions go last so the removed user cannot keep an authenticated one
	if err := s.store.DeleteUserSessions(ctx, userID); err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("User deleted",
			"user_id", userID,
			"deleted_by", actor.ID,
			"notes_removed", noteCount,
			"folders_removed", folderCount,
		)
	}

	return nil
}

// ToggleAdmin flips the target account's admin flag. Toggling an absent
// account is a silent no-op; the self guard fires regardless.
func (s *AdminService) ToggleAdmin(ctx context.Context, actor domain.Identity, userID string) error {
	if userID == actor.ID {
		return domainerrors.SelfActionForbidden("you cannot change your own admin status")
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	user.IsAdmin = !user.IsAdmin

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Admin flag toggled",
			"user_id", userID,
			"is_admin", user.IsAdmin,
			"toggled_by", actor.ID,
		)
	}

	return nil
}
