// Package storage provides SQLite-based persistence for notes, tags and checklists.
//
// The storage layer manages:
//   - Notes, including soft-deleted (trashed) notes
//   - Tags and their note associations (cross-refs)
//   - Checklist items owned by notes
//
// # Database Schema
//
// Tables:
//   - notes: one row per note, attachments stored as a JSON array
//   - tags: tag name and optional color
//   - checklist_items: items keyed to a note, cascade-deleted with it
//   - note_tag_cross_ref: (note_id, tag_id) pairs, cascade-deleted with either side
//   - schema_version: applied migrations
//
// Foreign keys are enforced on every connection; deleting a note or a tag removes
// its dependents inside SQLite, never in Go code.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage("~/.thoughtpad/thoughtpad.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	noteID, err := store.CreateNoteWithDetails(ctx, &types.Note{Title: types.String("A")},
//	    []types.ChecklistItem{{Text: types.String("buy milk")}},
//	    []types.Tag{{Name: types.String("home")}})
//
//	note, err := store.LoadNoteByID(ctx, noteID)
//
// # Identities
//
// Inserts take a types.Identity. types.NewIdentity() lets SQLite assign a fresh,
// never reused identity. types.WithIdentity(id) updates the row holding id in
// place, or inserts it under id; children of an updated row are kept.
//
// # Transactions
//
// RunInTx carries its transaction in the context. Every Storage method called
// with that context joins the transaction, and nested RunInTx calls do not
// begin a second one:
//
//	err := store.RunInTx(ctx, func(ctx context.Context) error {
//	    if _, err := store.InsertNote(ctx, types.NewIdentity(), note); err != nil {
//	        return err
//	    }
//	    return store.InsertCrossRefs(ctx, refs, types.ConflictIgnore)
//	})
//
// A context cancelled before the transaction begins aborts it; once begun, the
// transaction runs to commit or rollback.
//
// # Errors
//
// Errors wrap one of ErrNotFound, ErrConstraintViolation, ErrStoreUnavailable or
// ErrEncoding alongside the driver error. The package never logs and never retries.
//
// # Build Tags
//
// The storage package supports two build configurations:
//
// Pure Go build (default):
//
//   - Uses modernc.org/sqlite
//
//   - No C compiler required
//
//     CGO_ENABLED=0 go build ./...
//
// CGO build (sqlite_cgo tag):
//
//   - Uses github.com/mattn/go-sqlite3
//
//     CGO_ENABLED=1 go build -tags "sqlite_cgo" ./...
package storage
