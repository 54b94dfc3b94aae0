package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/id"
	"github.com/inkwellapp/inkwell-server/internal/store"
)

// FolderService manages a user's folders.
type FolderService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewFolderService creates a new folder service.
func NewFolderService(store *store.Store, logger *slog.Logger) *FolderService {
	return &FolderService{
		store:  store,
		logger: logger,
	}
}

// CreateFolderRequest contains the data for a new folder.
type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// RenameFolderRequest contains the new name for an existing folder.
type RenameFolderRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// ListFolders returns the requester's folders.
func (s *FolderService) ListFolders(ctx context.Context, identity domain.Identity) ([]*domain.Folder, error) {
	folders, err := s.store.ListFoldersByOwner(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// CreateFolder creates a folder owned by the requester.
func (s *FolderService) CreateFolder(ctx context.Context, identity domain.Identity, req CreateFolderRequest) (*domain.Folder, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	folderID, err := id.Generate("folder")
	if err != nil {
		return nil, fmt.Errorf("generate folder ID: %w", err)
	}

	folder := &domain.Folder{
		ID:      folderID,
		Name:    req.Name,
		OwnerID: identity.ID,
	}
	folder.InitTimestamps()

	if err := s.store.CreateFolder(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Folder created",
			"folder_id", folderID,
			"user_id", identity.ID,
		)
	}

	return folder, nil
}

// RenameFolder changes a folder's name. When the folder does not exist or
// belongs to someone else the rename matches nothing and succeeds silently,
// mirroring a matched-zero update.
func (s *FolderService) RenameFolder(ctx context.Context, identity domain.Identity, folderID string, req RenameFolderRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	folder, err := s.store.GetFolder(ctx, folderID)
	if err != nil {
		if errors.Is(err, store.ErrFolderNotFound) {
			return nil
		}
		return fmt.Errorf("get folder: %w", err)
	}
	if folder.OwnerID != identity.ID {
		return nil
	}

	folder.Name = req.Name
	if err := s.store.UpdateFolder(ctx, folder); err != nil {
		return fmt.Errorf("update folder: %w", err)
	}

	return nil
}
