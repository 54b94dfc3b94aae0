package store

import (
	"context"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNote(id, ownerID, title string) *domain.Note {
	note := &domain.Note{
		ID:      id,
		Title:   title,
		Content: "# " + title,
		OwnerID: ownerID,
	}
	note.InitTimestamps()
	return note
}

func TestCreateNote(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	note := newTestNote("note-1", "user-a", "Groceries")
	require.NoError(t, store.CreateNote(ctx, note))

	retrieved, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, note.Title, retrieved.Title)
	assert.Equal(t, note.Content, retrieved.Content)
	assert.Equal(t, note.OwnerID, retrieved.OwnerID)
}

func TestGetNote_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetNote(context.Background(), "note-missing")
	assert.ErrorIs(t, err, ErrNoteNotFound)
}

func TestUpdateNote_TouchesTimestamp(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	note := newTestNote("note-1", "user-a", "Draft")
	require.NoError(t, store.CreateNote(ctx, note))

	created := note.CreatedAt
	time.Sleep(5 * time.Millisecond)

	note.Title = "Final"
	require.NoError(t, store.UpdateNote(ctx, note))

	retrieved, err := store.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", retrieved.Title)
	assert.True(t, retrieved.UpdatedAt.After(created))
	assert.Equal(t, created.Unix(), retrieved.CreatedAt.Unix())
}

func TestDeleteNote(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	note := newTestNote("note-1", "user-a", "Temp")
	require.NoError(t, store.CreateNote(ctx, note))
	require.NoError(t, store.DeleteNote(ctx, note.ID))

	_, err := store.GetNote(ctx, note.ID)
	assert.ErrorIs(t, err, ErrNoteNotFound)

	// Owner listing no longer includes it
	notes, err := store.ListNotesByOwner(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDeleteNote_Absent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DeleteNote(context.Background(), "note-missing")
	assert.NoError(t, err)
}

func TestListNotesByOwner_ScopedAndOrdered(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	oldest := newTestNote("note-1", "user-a", "Oldest")
	require.NoError(t, store.CreateNote(ctx, oldest))
	time.Sleep(5 * time.Millisecond)

	newest := newTestNote("note-2", "user-a", "Newest")
	require.NoError(t, store.CreateNote(ctx, newest))

	// Another user's note never shows up
	foreign := newTestNote("note-3", "user-b", "Foreign")
	require.NoError(t, store.CreateNote(ctx, foreign))

	notes, err := store.ListNotesByOwner(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, notes, 2)

	// Most recently updated first
	assert.Equal(t, "note-2", notes[0].ID)
	assert.Equal(t, "note-1", notes[1].ID)
}

func TestListNotesByOwner_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	notes, err := store.ListNotesByOwner(context.Background(), "user-nobody")
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestDeleteNotesByOwner(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, store.CreateNote(ctx, newTestNote("note-1", "user-a", "One")))
	require.NoError(t, store.CreateNote(ctx, newTestNote("note-2", "user-a", "Two")))
	require.NoError(t, store.CreateNote(ctx, newTestNote("note-3", "user-b", "Keep")))

	deleted, err := store.DeleteNotesByOwner(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	notes, err := store.ListNotesByOwner(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, notes)

	// Other owners are untouched
	kept, err := store.ListNotesByOwner(ctx, "user-b")
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
