package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/inkwellapp/inkwell-server/internal/domain"
)

const (
	folderPrefix        = "folder:"
	folderByOwnerPrefix = "idx:folders:owner:" // For listing a user's folders
)

// CreateFolder creates a new folder and its owner index entry.
func (s *Store) CreateFolder(_ context.Context, folder *domain.Folder) error {
	key := []byte(folderPrefix + folder.ID)
	ownerIndexKey := []byte(folderByOwnerPrefix + folder.OwnerID + ":" + folder.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(folder)
		if err != nil {
			return fmt.Errorf("marshal folder: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}

		if err := txn.Set(ownerIndexKey, []byte{}); err != nil {
			return err
		}

		return nil
	})
}

// GetFolder retrieves a folder by ID.
func (s *Store) GetFolder(_ context.Context, id string) (*domain.Folder, error) {
	key := []byte(folderPrefix + id)

	var folder domain.Folder
	if err := s.get(key, &folder); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrFolderNotFound
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return &folder, nil
}

// UpdateFolder persists changes to an existing folder.
func (s *Store) UpdateFolder(ctx context.Context, folder *domain.Folder) error {
	if _, err := s.GetFolder(ctx, folder.ID); err != nil {
		return err
	}

	folder.Touch()

	key := []byte(folderPrefix + folder.ID)
	return s.set(key, folder)
}

// DeleteFolder removes a folder and its owner index entry.
// Deleting an absent folder is a no-op.
func (s *Store) DeleteFolder(ctx context.Context, id string) error {
	folder, err := s.GetFolder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrFolderNotFound) {
			return nil
		}
		return err
	}

	key := []byte(folderPrefix + id)
	ownerIndexKey := []byte(folderByOwnerPrefix + folder.OwnerID + ":" + id)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		if err := txn.Delete(ownerIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// ListFoldersByOwner returns all folders owned by a user ordered by
// creation time.
func (s *Store) ListFoldersByOwner(ctx context.Context, ownerID string) ([]*domain.Folder, error) {
	prefix := []byte(folderByOwnerPrefix + ownerID + ":")
	var folders []*domain.Folder

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:folders:owner:ownerID:folderID
			key := string(it.Item().Key())
			folderID := key[strings.LastIndex(key, ":")+1:]

			folder, err := s.GetFolder(ctx, folderID)
			if err != nil {
				if errors.Is(err, ErrFolderNotFound) {
					continue // Stale index entry
				}
				return err
			}

			folders = append(folders, folder)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}

	sort.Slice(folders, func(i, j int) bool {
		return folders[i].CreatedAt.Before(folders[j].CreatedAt)
	})

	return folders, nil
}

// DeleteFoldersByOwner removes every folder owned by a user.
// Returns the number of folders deleted.
func (s *Store) DeleteFoldersByOwner(ctx context.Context, ownerID string) (int, error) {
	folders, err := s.ListFoldersByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list folders for deletion: %w", err)
	}

	for _, folder := range folders {
		if err := s.DeleteFolder(ctx, folder.ID); err != nil {
			return 0, fmt.Errorf("delete folder %s: %w", folder.ID, err)
		}
	}

	return len(folders), nil
}
