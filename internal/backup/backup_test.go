package backup

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

func newStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seed(t *testing.T, store storage.Storage) {
	t.Helper()
	ctx := context.Background()
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	tags, err := store.InsertTags(ctx, []types.Tag{
		{Name: types.String("home"), Color: types.Color(types.TagColorGreen)},
		{Name: types.String("work")},
		{Name: types.String("unused")},
	})
	require.NoError(t, err)

	_, err = store.CreateNoteWithDetails(ctx, &types.Note{
		Title:       types.String("groceries"),
		CreatedAt:   types.Time(created),
		UpdatedAt:   types.Time(created),
		IsCheckList: true,
		Attachments: []string{"/img/list, final.png"},
	}, []types.ChecklistItem{
		{Text: types.String("milk")},
		{Text: types.String("eggs"), IsChecked: true},
	}, []types.Tag{{ID: tags[0]}})
	require.NoError(t, err)

	_, err = store.CreateNoteWithDetails(ctx, &types.Note{
		Title:        types.String("standup"),
		Body:         types.String("notes"),
		ReminderTime: types.Time(created.Add(time.Hour)),
		Color:        types.NoteColorBlue,
	}, nil, []types.Tag{{ID: tags[0]}, {ID: tags[1]}})
	require.NoError(t, err)

	_, err = store.InsertNote(ctx, types.NewIdentity(), &types.Note{Title: types.String("old"), IsDeleted: true})
	require.NoError(t, err)
}

func TestExport(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	var buf bytes.Buffer
	doc, err := Export(context.Background(), store, &buf)
	require.NoError(t, err)

	id, err := uuid.Parse(doc.ExportID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, storage.CurrentSchemaVersion, doc.SchemaVersion)
	assert.Len(t, doc.Tags, 3)
	require.Len(t, doc.Notes, 3)
	assert.Equal(t, "old", *doc.Notes[0].Note.Title)

	assert.Contains(t, buf.String(), `"export_id"`)
	assert.Contains(t, buf.String(), `list, final.png`)
}

func TestExportFile_ReplacesAtomically(t *testing.T) {
	store := newStore(t)
	seed(t, store)
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	doc, err := ExportFile(context.Background(), store, path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), doc.ExportID)
	assert.NotContains(t, string(data), "stale")
}

func TestImport_RoundTripKeepingIDs(t *testing.T) {
	source := newStore(t)
	seed(t, source)
	path := filepath.Join(t.TempDir(), "backup.json")
	exported, err := ExportFile(context.Background(), source, path)
	require.NoError(t, err)

	target := newStore(t)
	stats, err := NewImporter(target).ImportFile(context.Background(), path, &Options{Workers: 2, KeepIDs: true})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TagsImported)
	assert.Equal(t, 3, stats.NotesImported)
	assert.Zero(t, stats.NotesFailed)
	assert.Empty(t, stats.ErrorMessages)

	restored, err := Snapshot(context.Background(), target)
	require.NoError(t, err)

	ignore := cmpopts.IgnoreFields(types.ChecklistItem{}, "ID")
	if diff := cmp.Diff(exported.Tags, restored.Tags); diff != "" {
		t.Errorf("tags differ (-exported +restored):\n%s", diff)
	}
	if diff := cmp.Diff(exported.Notes, restored.Notes, ignore); diff != "" {
		t.Errorf("notes differ (-exported +restored):\n%s", diff)
	}
}

func TestImport_KeepIDsIsRepeatable(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	var buf bytes.Buffer
	_, err := Export(context.Background(), store, &buf)
	require.NoError(t, err)

	// Restoring over the same data replaces notes instead of duplicating them
	_, err = NewImporter(store).Import(context.Background(), bytes.NewReader(buf.Bytes()), &Options{KeepIDs: true})
	require.NoError(t, err)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NotesCount)
	assert.Equal(t, 1, stats.TrashedNotesCount)
	assert.Equal(t, 2, stats.ChecklistItemsCount)
	assert.Equal(t, 3, stats.CrossRefsCount)
}

func TestImport_NewIDs(t *testing.T) {
	store := newStore(t)
	seed(t, store)

	var buf bytes.Buffer
	_, err := Export(context.Background(), store, &buf)
	require.NoError(t, err)

	stats, err := NewImporter(store).Import(context.Background(), &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.NotesImported)

	notes, err := store.LoadAllNotesWithDetails(context.Background())
	require.NoError(t, err)
	assert.Len(t, notes, 6)

	// imported tags get fresh identities next to the originals
	tags, err := store.GetTags(context.Background())
	require.NoError(t, err)
	assert.Len(t, tags, 6)
}

func TestImport_NewIDsLeavesExistingTagsAlone(t *testing.T) {
	ctx := context.Background()

	source := newStore(t)
	_, err := source.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("from backup")}, nil,
		[]types.Tag{{Name: types.String("home")}})
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = Export(ctx, source, &buf)
	require.NoError(t, err)

	target := newStore(t)
	existingID, err := target.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("local")}, nil,
		[]types.Tag{{Name: types.String("work")}})
	require.NoError(t, err)

	stats, err := NewImporter(target).Import(ctx, &buf, &Options{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TagsImported)
	assert.Equal(t, 1, stats.NotesImported)

	local, err := target.LoadNoteByID(ctx, existingID)
	require.NoError(t, err)
	require.Len(t, local.Tags, 1)
	assert.Equal(t, "work", *local.Tags[0].Name)

	notes, err := target.LoadAllNotesWithDetails(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	imported := notes[0]
	assert.Equal(t, "from backup", *imported.Note.Title)
	require.Len(t, imported.Tags, 1)
	assert.Equal(t, "home", *imported.Tags[0].Name)
	assert.NotEqual(t, local.Tags[0].ID, imported.Tags[0].ID)
}

// failingStore rejects composite writes for notes titled "poison"
type failingStore struct {
	storage.Storage
	block chan struct{}
}

func (f *failingStore) CreateNoteWithDetails(ctx context.Context, note *types.Note, items []types.ChecklistItem, tags []types.Tag) (int64, error) {
	if note.Title != nil && *note.Title == "poison" {
		return 0, errors.New("rejected")
	}
	return f.Storage.CreateNoteWithDetails(ctx, note, items, tags)
}

func (f *failingStore) InsertTags(ctx context.Context, tags []types.Tag) ([]int64, error) {
	if f.block != nil {
		<-f.block
	}
	return f.Storage.InsertTags(ctx, tags)
}

func TestImport_FailedNoteIsSkipped(t *testing.T) {
	store := newStore(t)
	doc := `{"schema_version":"1.1.0","tags":[{"tag_id":4,"name":"t"}],"notes":[
		{"note":{"note_id":1,"title":"fine","attachments":[]},"checklist_items":[{"text":"a"}],"tags":[{"tag_id":4}]},
		{"note":{"note_id":2,"title":"poison","attachments":[]},"checklist_items":[],"tags":[]}
	]}`

	stats, err := NewImporter(&failingStore{Storage: store}).Import(context.Background(), strings.NewReader(doc), &Options{Workers: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TagsImported)
	assert.Equal(t, 1, stats.NotesImported)
	assert.Equal(t, 1, stats.NotesFailed)
	require.Len(t, stats.ErrorMessages, 1)
	assert.Contains(t, stats.ErrorMessages[0], "note 2")

	notes, err := store.LoadAllNotesWithDetails(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "fine", *notes[0].Note.Title)
	assert.Len(t, notes[0].ChecklistItems, 1)
	require.Len(t, notes[0].Tags, 1)
	assert.Equal(t, "t", *notes[0].Tags[0].Name)
}

func TestImport_InProgress(t *testing.T) {
	store := &failingStore{Storage: newStore(t), block: make(chan struct{})}
	imp := NewImporter(store)
	doc := `{"tags":[{"name":"x"}],"notes":[]}`

	done := make(chan error, 1)
	go func() {
		_, err := imp.Import(context.Background(), strings.NewReader(doc), nil)
		done <- err
	}()

	// Wait until the first import holds the lock
	require.Eventually(t, func() bool { return imp.lock.state.Load() == 1 }, time.Second, time.Millisecond)

	_, err := imp.Import(context.Background(), strings.NewReader(doc), nil)
	assert.ErrorIs(t, err, ErrImportInProgress)

	close(store.block)
	require.NoError(t, <-done)
}

func TestImport_RejectsNewerSchema(t *testing.T) {
	store := newStore(t)

	_, err := NewImporter(store).Import(context.Background(), strings.NewReader(`{"schema_version":"2.0.0"}`), nil)
	assert.Error(t, err)

	_, err = NewImporter(store).Import(context.Background(), strings.NewReader(`{"schema_version":"banana"}`), nil)
	assert.Error(t, err)

	_, err = NewImporter(store).Import(context.Background(), strings.NewReader(`not json`), nil)
	assert.Error(t, err)
}

func TestImport_Cancelled(t *testing.T) {
	store := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := `{"notes":[{"note":{"title":"x","attachments":[]}}]}`
	_, err := NewImporter(store).Import(ctx, strings.NewReader(doc), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
