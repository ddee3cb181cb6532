package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// Options tunes a SQLiteStorage
type Options struct {
	// MaxBindParameters caps the number of keys bound into one relation query
	MaxBindParameters int
}

// DefaultOptions returns the options used by NewSQLiteStorage
func DefaultOptions() Options {
	return Options{MaxBindParameters: DefaultMaxBindParameters}
}

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db    *sql.DB
	stmts *statementCache
	opts  Options
}

var _ Storage = (*SQLiteStorage)(nil)

func isMemoryPath(dbPath string) bool {
	return dbPath == ":memory:" || strings.HasPrefix(dbPath, "file::memory:") || strings.Contains(dbPath, "mode=memory")
}

// openDatabase opens a SQLite database with foreign keys enforced on its only connection
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dsn(dbPath))
	if err != nil {
		return nil, err
	}

	// SQLite has a single writer, and an in-memory database lives only as long
	// as its connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if enabled != 1 {
		_ = db.Close()
		return nil, errors.New("foreign key enforcement is not available")
	}

	if !isMemoryPath(dbPath) {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	return db, nil
}

// NewSQLiteStorage opens the database at dbPath with default options
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	return NewSQLiteStorageWithOptions(dbPath, DefaultOptions())
}

// NewSQLiteStorageWithOptions opens the database at dbPath, applies pending
// migrations and prepares the statement cache
func NewSQLiteStorageWithOptions(dbPath string, opts Options) (*SQLiteStorage, error) {
	if opts.MaxBindParameters < 1 {
		return nil, fmt.Errorf("max bind parameters must be positive, got %d", opts.MaxBindParameters)
	}

	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, classify("failed to open database", err)
	}

	ctx := context.Background()
	if err := ApplyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, classify("failed to apply migrations", err)
	}

	stmts, err := prepareStatements(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, classify("failed to prepare statements", err)
	}

	return &SQLiteStorage{db: db, stmts: stmts, opts: opts}, nil
}

// Close releases the prepared statements and closes the database
func (s *SQLiteStorage) Close() error {
	stmtErr := s.stmts.Close()
	if err := s.db.Close(); err != nil {
		return err
	}
	return stmtErr
}

// Note operations

// InsertNote inserts note and returns its identity, which is also written to note.ID.
// With a supplied identity an existing row is updated in place; its children are kept.
func (s *SQLiteStorage) InsertNote(ctx context.Context, id types.Identity, note *types.Note) (int64, error) {
	row, err := encodeNote(note)
	if err != nil {
		return 0, classify("failed to insert note", err)
	}

	var noteID int64
	if v, ok := id.Value(); ok {
		if v == 0 {
			return 0, fmt.Errorf("failed to insert note: %w", types.ErrInvalidIdentity)
		}
		err = s.queryRowStmt(ctx, stmtUpsertNote, []any{&noteID}, append([]any{v}, row.values()...)...)
	} else {
		err = s.queryRowStmt(ctx, stmtInsertNote, []any{&noteID}, row.values()...)
	}
	if err != nil {
		return 0, classify("failed to insert note", err)
	}

	note.ID = noteID
	return noteID, nil
}

// GetNote returns the note with noteID, or ErrNotFound
func (s *SQLiteStorage) GetNote(ctx context.Context, noteID int64) (*types.Note, error) {
	var row noteRow
	if err := s.queryRowStmt(ctx, stmtGetNote, row.dest(), noteID); err != nil {
		return nil, classify("failed to get note", err)
	}
	note, err := decodeNote(row)
	if err != nil {
		return nil, classify("failed to get note", err)
	}
	return note, nil
}

// UpdateNote replaces every column of an existing note
func (s *SQLiteStorage) UpdateNote(ctx context.Context, note *types.Note) error {
	if note.ID == 0 {
		return fmt.Errorf("failed to update note: %w", types.ErrInvalidIdentity)
	}
	row, err := encodeNote(note)
	if err != nil {
		return classify("failed to update note", err)
	}
	if err := s.execStmtExpectRow(ctx, stmtUpdateNote, append(row.values(), note.ID)...); err != nil {
		return classify("failed to update note", err)
	}
	return nil
}

// DeleteNote hard-deletes a note; its checklist items and cross-refs cascade
func (s *SQLiteStorage) DeleteNote(ctx context.Context, noteID int64) error {
	if err := s.execStmtExpectRow(ctx, stmtDeleteNote, noteID); err != nil {
		return classify("failed to delete note", err)
	}
	return nil
}

// EmptyTrash hard-deletes every soft-deleted note
func (s *SQLiteStorage) EmptyTrash(ctx context.Context) (int, error) {
	result, err := s.querier(ctx).ExecContext(ctx, `DELETE FROM notes WHERE is_deleted = 1`)
	if err != nil {
		return 0, classify("failed to empty trash", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, classify("failed to empty trash", err)
	}
	return int(n), nil
}

// Tag operations

// UpsertTag inserts tag and returns its identity, which is also written to tag.ID.
// With a supplied identity an existing tag is updated in place.
func (s *SQLiteStorage) UpsertTag(ctx context.Context, id types.Identity, tag *types.Tag) (int64, error) {
	row := encodeTag(tag)

	var tagID int64
	var err error
	if v, ok := id.Value(); ok {
		if v == 0 {
			return 0, fmt.Errorf("failed to upsert tag: %w", types.ErrInvalidIdentity)
		}
		err = s.queryRowStmt(ctx, stmtUpsertTag, []any{&tagID}, v, row.Name, row.Color)
	} else {
		err = s.queryRowStmt(ctx, stmtInsertTag, []any{&tagID}, row.Name, row.Color)
	}
	if err != nil {
		return 0, classify("failed to upsert tag", err)
	}

	tag.ID = tagID
	return tagID, nil
}

// InsertTags upserts every tag in one transaction, following the zero-means-generate
// convention per tag. Generated identities are written back into tags.
func (s *SQLiteStorage) InsertTags(ctx context.Context, tags []types.Tag) ([]int64, error) {
	ids := make([]int64, len(tags))
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		for i := range tags {
			id, err := s.UpsertTag(ctx, types.IdentityOf(tags[i].ID), &tags[i])
			if err != nil {
				return err
			}
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return nil, classify("failed to insert tags", err)
	}
	return ids, nil
}

// insertTagIfAbsent inserts tag under its own identity unless a tag with that identity exists
func (s *SQLiteStorage) insertTagIfAbsent(ctx context.Context, tag *types.Tag) error {
	row := encodeTag(tag)
	_, err := s.execStmt(ctx, stmtInsertTagIgnore, tag.ID, row.Name, row.Color)
	return err
}

// UpdateTag overwrites the tag with tag.ID, or returns ErrNotFound
func (s *SQLiteStorage) UpdateTag(ctx context.Context, tag *types.Tag) error {
	if tag.ID == 0 {
		return fmt.Errorf("failed to update tag: %w", types.ErrInvalidIdentity)
	}
	row := encodeTag(tag)
	if err := s.execStmtExpectRow(ctx, stmtUpdateTag, row.Name, row.Color, tag.ID); err != nil {
		return classify("failed to update tag", err)
	}
	return nil
}

// DeleteTag deletes a tag; cross-refs to it cascade
func (s *SQLiteStorage) DeleteTag(ctx context.Context, tagID int64) error {
	if err := s.execStmtExpectRow(ctx, stmtDeleteTag, tagID); err != nil {
		return classify("failed to delete tag", err)
	}
	return nil
}

// GetTag returns the tag with tagID, or ErrNotFound
func (s *SQLiteStorage) GetTag(ctx context.Context, tagID int64) (*types.Tag, error) {
	var row tagRow
	if err := s.queryRowStmt(ctx, stmtGetTag, row.dest(), tagID); err != nil {
		return nil, classify("failed to get tag", err)
	}
	tag := decodeTag(row)
	return &tag, nil
}

// GetTags returns every tag ordered by identity
func (s *SQLiteStorage) GetTags(ctx context.Context) ([]types.Tag, error) {
	rows, err := s.querier(ctx).QueryContext(ctx, `SELECT `+tagColumns+` FROM tags ORDER BY tag_id`)
	if err != nil {
		return nil, classify("failed to get tags", err)
	}
	defer func() { _ = rows.Close() }()

	tags := []types.Tag{}
	for rows.Next() {
		var row tagRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, classify("failed to scan tag", err)
		}
		tags = append(tags, decodeTag(row))
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to get tags", err)
	}
	return tags, nil
}

// Checklist operations

func (s *SQLiteStorage) insertChecklistItem(ctx context.Context, id types.Identity, item *types.ChecklistItem) (int64, error) {
	row := encodeChecklistItem(item)

	var itemID int64
	var err error
	if v, ok := id.Value(); ok {
		if v == 0 {
			return 0, types.ErrInvalidIdentity
		}
		err = s.queryRowStmt(ctx, stmtUpsertChecklistItem, []any{&itemID}, v, row.NoteID, row.Text, row.IsChecked)
	} else {
		err = s.queryRowStmt(ctx, stmtInsertChecklistItem, []any{&itemID}, row.NoteID, row.Text, row.IsChecked)
	}
	if err != nil {
		return 0, err
	}
	return itemID, nil
}

// InsertChecklistItems inserts items in one transaction, following the
// zero-means-generate convention per item. Identities are written back into items.
func (s *SQLiteStorage) InsertChecklistItems(ctx context.Context, items []types.ChecklistItem) ([]int64, error) {
	ids := make([]int64, len(items))
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		for i := range items {
			id, err := s.insertChecklistItem(ctx, types.IdentityOf(items[i].ID), &items[i])
			if err != nil {
				return err
			}
			items[i].ID = id
			ids[i] = id
		}
		return nil
	})
	if err != nil {
		return nil, classify("failed to insert checklist items", err)
	}
	return ids, nil
}

// UpdateChecklistItem overwrites the item with item.ID, or returns ErrNotFound
func (s *SQLiteStorage) UpdateChecklistItem(ctx context.Context, item *types.ChecklistItem) error {
	if item.ID == 0 {
		return fmt.Errorf("failed to update checklist item: %w", types.ErrInvalidIdentity)
	}
	row := encodeChecklistItem(item)
	if err := s.execStmtExpectRow(ctx, stmtUpdateChecklistItem, row.NoteID, row.Text, row.IsChecked, item.ID); err != nil {
		return classify("failed to update checklist item", err)
	}
	return nil
}

// DeleteChecklistItem deletes one checklist item, or returns ErrNotFound
func (s *SQLiteStorage) DeleteChecklistItem(ctx context.Context, itemID int64) error {
	if err := s.execStmtExpectRow(ctx, stmtDeleteChecklistItem, itemID); err != nil {
		return classify("failed to delete checklist item", err)
	}
	return nil
}

// GetChecklistItemsForNote returns the note's items ordered by identity. A note
// without items, or a missing note, yields an empty slice.
func (s *SQLiteStorage) GetChecklistItemsForNote(ctx context.Context, noteID int64) ([]types.ChecklistItem, error) {
	rows, err := s.querier(ctx).QueryContext(ctx,
		`SELECT `+checklistColumns+` FROM checklist_items WHERE note_id = ? ORDER BY checklist_item_id`, noteID)
	if err != nil {
		return nil, classify("failed to get checklist items", err)
	}
	defer func() { _ = rows.Close() }()

	items := []types.ChecklistItem{}
	for rows.Next() {
		var row checklistRow
		if err := rows.Scan(row.dest()...); err != nil {
			return nil, classify("failed to scan checklist item", err)
		}
		items = append(items, decodeChecklistItem(row))
	}
	if err := rows.Err(); err != nil {
		return nil, classify("failed to get checklist items", err)
	}
	return items, nil
}

// Cross-reference operations

func crossRefStmt(policy types.ConflictPolicy) (stmtKey, error) {
	switch policy {
	case types.ConflictIgnore:
		return stmtInsertCrossRefIgnore, nil
	case types.ConflictReplace:
		return stmtInsertCrossRefReplace, nil
	default:
		return 0, fmt.Errorf("%w: %s", types.ErrInvalidPolicy, policy)
	}
}

// InsertCrossRefs associates notes with tags in one transaction. A pair that
// already exists is kept or replaced according to policy.
func (s *SQLiteStorage) InsertCrossRefs(ctx context.Context, refs []types.NoteTagCrossRef, policy types.ConflictPolicy) error {
	key, err := crossRefStmt(policy)
	if err != nil {
		return fmt.Errorf("failed to insert cross-refs: %w", err)
	}
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		for _, ref := range refs {
			if _, err := s.execStmt(ctx, key, ref.NoteID, ref.TagID); err != nil {
				return err
			}
		}
		return nil
	})
	return classify("failed to insert cross-refs", err)
}

func (s *SQLiteStorage) DeleteCrossRef(ctx context.Context, ref types.NoteTagCrossRef) error {
	if err := s.execStmtExpectRow(ctx, stmtDeleteCrossRef, ref.NoteID, ref.TagID); err != nil {
		return classify("failed to delete cross-ref", err)
	}
	return nil
}

// DeleteCrossRefsForNote removes every tag association of a note and returns how many were removed
func (s *SQLiteStorage) DeleteCrossRefsForNote(ctx context.Context, noteID int64) (int, error) {
	n, err := s.execStmt(ctx, stmtDeleteCrossRefsByNote, noteID)
	if err != nil {
		return 0, classify("failed to delete cross-refs", err)
	}
	return int(n), nil
}

// Status operations

// Stats returns row counts, schema version and database health
func (s *SQLiteStorage) Stats(ctx context.Context) (*Stats, error) {
	q := s.querier(ctx)
	stats := &Stats{Driver: DriverName, BuildMode: BuildMode}

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM notes WHERE is_deleted = 0", &stats.NotesCount},
		{"SELECT COUNT(*) FROM notes WHERE is_deleted = 1", &stats.TrashedNotesCount},
		{"SELECT COUNT(*) FROM tags", &stats.TagsCount},
		{"SELECT COUNT(*) FROM checklist_items", &stats.ChecklistItemsCount},
		{"SELECT COUNT(*) FROM note_tag_cross_ref", &stats.CrossRefsCount},
	}
	for _, c := range counts {
		if err := q.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, classify("failed to count rows", err)
		}
	}

	version, err := schemaVersion(ctx, q)
	if err != nil {
		return nil, classify("failed to read schema version", err)
	}
	stats.SchemaVersion = version.String()

	// Calculate database size
	var pageCount, pageSize int64
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		stats.DatabaseSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	var foreignKeys int
	_ = q.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys)
	var integrity string
	_ = q.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&integrity)

	stats.Health = HealthStatus{
		DatabaseAccessible: true,
		ForeignKeysEnabled: foreignKeys == 1,
		IntegrityOK:        integrity == "ok",
	}
	return stats, nil
}
