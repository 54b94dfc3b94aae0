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
	notePrefix        = "note:"
	noteByOwnerPrefix = "idx:notes:owner:" // For listing a user's notes
)

// CreateNote creates a new note and its owner index entry.
func (s *Store) CreateNote(_ context.Context, note *domain.Note) error {
	key := []byte(notePrefix + note.ID)
	ownerIndexKey := []byte(noteByOwnerPrefix + note.OwnerID + ":" + note.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(note)
		if err != nil {
			return fmt.Errorf("marshal note: %w", err)
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

// GetNote retrieves a note by ID. Ownership is not checked here, callers
// decide what a foreign note looks like to the requester.
func (s *Store) GetNote(_ context.Context, id string) (*domain.Note, error) {
	key := []byte(notePrefix + id)

	var note domain.Note
	if err := s.get(key, &note); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("get note: %w", err)
	}

	return &note, nil
}

// UpdateNote persists changes to an existing note.
func (s *Store) UpdateNote(ctx context.Context, note *domain.Note) error {
	if _, err := s.GetNote(ctx, note.ID); err != nil {
		return err
	}

	note.Touch()

	key := []byte(notePrefix + note.ID)
	return s.set(key, note)
}

// DeleteNote removes a note and its owner index entry.
// Deleting an absent note is a no-op.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	note, err := s.GetNote(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			return nil
		}
		return err
	}

	key := []byte(notePrefix + id)
	ownerIndexKey := []byte(noteByOwnerPrefix + note.OwnerID + ":" + id)

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

// ListNotesByOwner returns all notes owned by a user, most recently
// updated first.
func (s *Store) ListNotesByOwner(ctx context.Context, ownerID string) ([]*domain.Note, error) {
	prefix := []byte(noteByOwnerPrefix + ownerID + ":")
	var notes []*domain.Note

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // We only need keys

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key format: idx:notes:owner:ownerID:noteID
			key := string(it.Item().Key())
			noteID := key[strings.LastIndex(key, ":")+1:]

			note, err := s.GetNote(ctx, noteID)
			if err != nil {
				if errors.Is(err, ErrNoteNotFound) {
					continue // Stale index entry
				}
				return err
			}

			notes = append(notes, note)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	sort.Slice(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})

	return notes, nil
}

// DeleteNotesByOwner removes every note owned by a user.
// Returns the number of notes deleted.
func (s *Store) DeleteNotesByOwner(ctx context.Context, ownerID string) (int, error) {
	notes, err := s.ListNotesByOwner(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("list notes for deletion: %w", err)
	}

	for _, note := range notes {
		if err := s.DeleteNote(ctx, note.ID); err != nil {
			return 0, fmt.Errorf("delete note %s: %w", note.ID, err)
		}
	}

	return len(notes), nil
}
