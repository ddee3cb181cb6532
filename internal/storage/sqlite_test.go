package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	return setupTestDBWithOptions(t, DefaultOptions())
}

func setupTestDBWithOptions(t *testing.T, opts Options) *SQLiteStorage {
	t.Helper()
	// Use in-memory database for testing
	storage, err := NewSQLiteStorageWithOptions(":memory:", opts)
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)

	assert.NotNil(t, storage.db)

	var enabled int
	require.NoError(t, storage.db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestNewSQLiteStorage_InvalidOptions(t *testing.T) {
	_, err := NewSQLiteStorageWithOptions(":memory:", Options{MaxBindParameters: 0})
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	assert.NoError(t, storage.Close())
}

func TestNewSQLiteStorage_File(t *testing.T) {
	path := t.TempDir() + "/notes.db"

	storage, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	_, err = storage.InsertNote(context.Background(), types.NewIdentity(), &types.Note{Title: types.String("kept")})
	require.NoError(t, err)
	require.NoError(t, storage.Close())

	reopened, err := NewSQLiteStorage(path)
	require.NoError(t, err)
	defer reopened.Close()

	notes, err := reopened.LoadAllNotesWithDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "kept", *notes[0].Note.Title)
}

func TestInsertNote_NewIdentity(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	first := &types.Note{Title: types.String("one")}
	id1, err := storage.InsertNote(ctx, types.NewIdentity(), first)
	require.NoError(t, err)
	assert.Greater(t, id1, int64(0))
	assert.Equal(t, id1, first.ID)

	id2, err := storage.InsertNote(ctx, types.NewIdentity(), &types.Note{Title: types.String("two")})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	// Identities are never reused, even after deletion
	require.NoError(t, storage.DeleteNote(ctx, id2))
	id3, err := storage.InsertNote(ctx, types.NewIdentity(), &types.Note{})
	require.NoError(t, err)
	assert.Greater(t, id3, id2)
}

func TestInsertNote_WithIdentityReplacesInPlace(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	noteID, err := storage.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("before")},
		[]types.ChecklistItem{{Text: types.String("item")}},
		[]types.Tag{{Name: types.String("tag")}})
	require.NoError(t, err)

	id, err := storage.InsertNote(ctx, types.WithIdentity(noteID), &types.Note{Title: types.String("after"), IsPinned: true})
	require.NoError(t, err)
	assert.Equal(t, noteID, id)

	notes, err := storage.LoadAllNotesWithDetails(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "after", *notes[0].Note.Title)
	assert.True(t, notes[0].Note.IsPinned)
	// Replacing the parent row keeps its children
	assert.Len(t, notes[0].ChecklistItems, 1)
	assert.Len(t, notes[0].Tags, 1)
}

func TestInsertNote_WithUnusedIdentity(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	id, err := storage.InsertNote(ctx, types.WithIdentity(42), &types.Note{})
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = storage.InsertNote(ctx, types.WithIdentity(0), &types.Note{})
	assert.ErrorIs(t, err, types.ErrInvalidIdentity)
}

func TestGetNote_NotFound(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.GetNote(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateNote(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	note := &types.Note{Title: types.String("draft"), Attachments: []string{"/a"}}
	_, err := storage.InsertNote(ctx, types.NewIdentity(), note)
	require.NoError(t, err)

	note.Title = nil
	note.Body = types.String("body")
	note.Color = types.NoteColorCoral
	note.Attachments = nil
	require.NoError(t, storage.UpdateNote(ctx, note))

	got, err := storage.GetNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Title)
	assert.Equal(t, "body", *got.Body)
	assert.Equal(t, types.NoteColorCoral, got.Color)
	assert.Equal(t, []string{}, got.Attachments)
}

func TestUpdateNote_NotFound(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	err := storage.UpdateNote(ctx, &types.Note{ID: 999})
	assert.ErrorIs(t, err, ErrNotFound)

	err = storage.UpdateNote(ctx, &types.Note{})
	assert.ErrorIs(t, err, types.ErrInvalidIdentity)
}

func TestDeleteNote_NotFound(t *testing.T) {
	storage := setupTestDB(t)

	err := storage.DeleteNote(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNote_Cascades(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	shared := types.Tag{Name: types.String("shared")}
	_, err := storage.UpsertTag(ctx, types.NewIdentity(), &shared)
	require.NoError(t, err)

	doomed, err := storage.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("doomed")},
		[]types.ChecklistItem{{Text: types.String("a")}, {Text: types.String("b")}},
		[]types.Tag{shared})
	require.NoError(t, err)
	kept, err := storage.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("kept")},
		[]types.ChecklistItem{{Text: types.String("c")}},
		[]types.Tag{shared})
	require.NoError(t, err)

	require.NoError(t, storage.DeleteNote(ctx, doomed))

	items, err := storage.GetChecklistItemsForNote(ctx, doomed)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 0, countRows(t, storage, "SELECT COUNT(*) FROM note_tag_cross_ref WHERE note_id = ?", doomed))

	note, err := storage.LoadNoteByID(ctx, kept)
	require.NoError(t, err)
	assert.Len(t, note.ChecklistItems, 1)
	assert.Len(t, note.Tags, 1)

	// The tag itself survives its notes
	_, err = storage.GetTag(ctx, shared.ID)
	assert.NoError(t, err)
}

func TestDeleteTag_CascadesOnlyItsCrossRefs(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	noteID, err := storage.CreateNoteWithDetails(ctx, &types.Note{},
		nil, []types.Tag{{Name: types.String("x")}, {Name: types.String("y")}})
	require.NoError(t, err)

	note, err := storage.LoadNoteByID(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, note.Tags, 2)

	require.NoError(t, storage.DeleteTag(ctx, note.Tags[0].ID))

	note, err = storage.LoadNoteByID(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, note.Tags, 1)
	assert.Equal(t, "y", *note.Tags[0].Name)

	assert.ErrorIs(t, storage.DeleteTag(ctx, 999), ErrNotFound)
}

func TestEmptyTrash(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	trashed, err := storage.CreateNoteWithDetails(ctx, &types.Note{IsDeleted: true},
		[]types.ChecklistItem{{Text: types.String("gone")}}, nil)
	require.NoError(t, err)
	live, err := storage.InsertNote(ctx, types.NewIdentity(), &types.Note{})
	require.NoError(t, err)

	n, err := storage.EmptyTrash(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = storage.GetNote(ctx, trashed)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = storage.GetNote(ctx, live)
	assert.NoError(t, err)
	assert.Equal(t, 0, countRows(t, storage, "SELECT COUNT(*) FROM checklist_items"))
}

func TestUpsertTag_IdentityConvention(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	tag := &types.Tag{Name: types.String("home"), Color: types.Color(types.TagColorBlue)}
	id, err := storage.UpsertTag(ctx, types.NewIdentity(), tag)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))
	assert.Equal(t, id, tag.ID)

	replaced := &types.Tag{Name: types.String("house")}
	sameID, err := storage.UpsertTag(ctx, types.WithIdentity(id), replaced)
	require.NoError(t, err)
	assert.Equal(t, id, sameID)

	tags, err := storage.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "house", *tags[0].Name)
	assert.Nil(t, tags[0].Color)
}

func TestGetTags(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	tags, err := storage.GetTags(ctx)
	require.NoError(t, err)
	assert.NotNil(t, tags)
	assert.Empty(t, tags)

	ids, err := storage.InsertTags(ctx, []types.Tag{
		{Name: types.String("b")},
		{ID: 10, Name: types.String("a")},
		{Name: types.String("c")},
	})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, int64(10), ids[1])

	tags, err = storage.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	for i := 1; i < len(tags); i++ {
		assert.Less(t, tags[i-1].ID, tags[i].ID)
	}
}

func TestGetTag(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	_, err := storage.GetTag(ctx, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	tag := &types.Tag{Name: types.String("errands")}
	_, err = storage.UpsertTag(ctx, types.NewIdentity(), tag)
	require.NoError(t, err)

	got, err := storage.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag, got)
}

func TestUpdateTag(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	assert.ErrorIs(t, storage.UpdateTag(ctx, &types.Tag{ID: 5}), ErrNotFound)

	tag := &types.Tag{Name: types.String("old")}
	_, err := storage.UpsertTag(ctx, types.NewIdentity(), tag)
	require.NoError(t, err)

	tag.Name = types.String("new")
	tag.Color = types.Color(types.TagColorRed)
	require.NoError(t, storage.UpdateTag(ctx, tag))

	got, err := storage.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Equal(t, tag, got)
}

func TestChecklistItems(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	noteID, err := storage.InsertNote(ctx, types.NewIdentity(), &types.Note{IsCheckList: true})
	require.NoError(t, err)

	items := []types.ChecklistItem{
		{NoteID: &noteID, Text: types.String("eggs")},
		{NoteID: &noteID, Text: types.String("flour"), IsChecked: true},
	}
	ids, err := storage.InsertChecklistItems(ctx, items)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, ids[0], items[0].ID)

	// A non-zero identity replaces the existing item in place
	_, err = storage.InsertChecklistItems(ctx, []types.ChecklistItem{
		{ID: ids[0], NoteID: &noteID, Text: types.String("eggs (6)"), IsChecked: true},
	})
	require.NoError(t, err)

	got, err := storage.GetChecklistItemsForNote(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "eggs (6)", *got[0].Text)
	assert.True(t, got[0].IsChecked)

	got[1].IsChecked = false
	require.NoError(t, storage.UpdateChecklistItem(ctx, &got[1]))
	require.NoError(t, storage.DeleteChecklistItem(ctx, got[0].ID))

	got, err = storage.GetChecklistItemsForNote(ctx, noteID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].IsChecked)

	assert.ErrorIs(t, storage.DeleteChecklistItem(ctx, 999), ErrNotFound)
	assert.ErrorIs(t, storage.UpdateChecklistItem(ctx, &types.ChecklistItem{ID: 999}), ErrNotFound)
}

func TestInsertChecklistItems_UnknownNote(t *testing.T) {
	storage := setupTestDB(t)

	_, err := storage.InsertChecklistItems(context.Background(), []types.ChecklistItem{
		{NoteID: types.Int64(404), Text: types.String("orphan")},
	})
	assert.ErrorIs(t, err, ErrConstraintViolation)
}

func TestInsertCrossRefs_Policies(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	noteID, err := storage.InsertNote(ctx, types.NewIdentity(), &types.Note{})
	require.NoError(t, err)
	tag := &types.Tag{Name: types.String("t")}
	_, err = storage.UpsertTag(ctx, types.NewIdentity(), tag)
	require.NoError(t, err)

	ref := types.NoteTagCrossRef{NoteID: noteID, TagID: tag.ID}
	for _, policy := range []types.ConflictPolicy{types.ConflictIgnore, types.ConflictIgnore, types.ConflictReplace} {
		require.NoError(t, storage.InsertCrossRefs(ctx, []types.NoteTagCrossRef{ref}, policy), policy.String())
	}
	assert.Equal(t, 1, countRows(t, storage, "SELECT COUNT(*) FROM note_tag_cross_ref"))

	err = storage.InsertCrossRefs(ctx, []types.NoteTagCrossRef{ref}, types.ConflictPolicy(9))
	assert.ErrorIs(t, err, types.ErrInvalidPolicy)

	// Both sides must exist
	err = storage.InsertCrossRefs(ctx, []types.NoteTagCrossRef{{NoteID: noteID, TagID: 404}}, types.ConflictIgnore)
	assert.ErrorIs(t, err, ErrConstraintViolation)

	require.NoError(t, storage.DeleteCrossRef(ctx, ref))
	assert.ErrorIs(t, storage.DeleteCrossRef(ctx, ref), ErrNotFound)
}

func TestDeleteCrossRefsForNote(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	noteID, err := storage.CreateNoteWithDetails(ctx, &types.Note{}, nil,
		[]types.Tag{{Name: types.String("a")}, {Name: types.String("b")}})
	require.NoError(t, err)

	n, err := storage.DeleteCrossRefsForNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = storage.DeleteCrossRefsForNote(ctx, noteID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	tags, err := storage.GetTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestStats(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	_, err := storage.CreateNoteWithDetails(ctx, &types.Note{},
		[]types.ChecklistItem{{Text: types.String("x")}}, []types.Tag{{Name: types.String("t")}})
	require.NoError(t, err)
	_, err = storage.InsertNote(ctx, types.NewIdentity(), &types.Note{IsDeleted: true})
	require.NoError(t, err)

	stats, err := storage.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotesCount)
	assert.Equal(t, 1, stats.TrashedNotesCount)
	assert.Equal(t, 1, stats.TagsCount)
	assert.Equal(t, 1, stats.ChecklistItemsCount)
	assert.Equal(t, 1, stats.CrossRefsCount)
	assert.Equal(t, CurrentSchemaVersion, stats.SchemaVersion)
	assert.Equal(t, DriverName, stats.Driver)
	assert.True(t, stats.Health.DatabaseAccessible)
	assert.True(t, stats.Health.ForeignKeysEnabled)
	assert.True(t, stats.Health.IntegrityOK)
	assert.Greater(t, stats.DatabaseSizeMB, 0.0)
}

func countRows(t *testing.T, s *SQLiteStorage, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, s.db.QueryRow(query, args...).Scan(&n))
	return n
}
