package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// stmtKey names one cached statement
type stmtKey int

const (
	stmtInsertNote stmtKey = iota
	stmtUpsertNote
	stmtUpdateNote
	stmtDeleteNote
	stmtGetNote

	stmtInsertTag
	stmtUpsertTag
	stmtInsertTagIgnore
	stmtUpdateTag
	stmtDeleteTag
	stmtGetTag

	stmtInsertChecklistItem
	stmtUpsertChecklistItem
	stmtUpdateChecklistItem
	stmtDeleteChecklistItem
	stmtDeleteChecklistItemsByNote

	stmtInsertCrossRefIgnore
	stmtInsertCrossRefReplace
	stmtDeleteCrossRefsByNote
	stmtDeleteCrossRef
)

var statementSQL = map[stmtKey]string{
	stmtInsertNote: `
		INSERT INTO notes (title, body, created_at, updated_at, is_pinned, is_archived,
			is_favorite, is_deleted, is_check_list, color, reminder_time, attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING note_id`,
	stmtUpsertNote: `
		INSERT INTO notes (note_id, title, body, created_at, updated_at, is_pinned, is_archived,
			is_favorite, is_deleted, is_check_list, color, reminder_time, attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(note_id) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			is_pinned = excluded.is_pinned,
			is_archived = excluded.is_archived,
			is_favorite = excluded.is_favorite,
			is_deleted = excluded.is_deleted,
			is_check_list = excluded.is_check_list,
			color = excluded.color,
			reminder_time = excluded.reminder_time,
			attachments = excluded.attachments
		RETURNING note_id`,
	stmtUpdateNote: `
		UPDATE notes
		SET title = ?, body = ?, created_at = ?, updated_at = ?, is_pinned = ?, is_archived = ?,
		    is_favorite = ?, is_deleted = ?, is_check_list = ?, color = ?, reminder_time = ?,
		    attachments = ?
		WHERE note_id = ?`,
	stmtDeleteNote: `DELETE FROM notes WHERE note_id = ?`,
	stmtGetNote:    `SELECT ` + noteColumns + ` FROM notes WHERE note_id = ?`,

	stmtInsertTag: `INSERT INTO tags (name, color) VALUES (?, ?) RETURNING tag_id`,
	stmtUpsertTag: `
		INSERT INTO tags (tag_id, name, color) VALUES (?, ?, ?)
		ON CONFLICT(tag_id) DO UPDATE SET name = excluded.name, color = excluded.color
		RETURNING tag_id`,
	stmtInsertTagIgnore: `INSERT INTO tags (tag_id, name, color) VALUES (?, ?, ?) ON CONFLICT(tag_id) DO NOTHING`,
	stmtUpdateTag:       `UPDATE tags SET name = ?, color = ? WHERE tag_id = ?`,
	stmtDeleteTag:       `DELETE FROM tags WHERE tag_id = ?`,
	stmtGetTag:          `SELECT ` + tagColumns + ` FROM tags WHERE tag_id = ?`,

	stmtInsertChecklistItem: `INSERT INTO checklist_items (note_id, text, is_checked) VALUES (?, ?, ?) RETURNING checklist_item_id`,
	stmtUpsertChecklistItem: `
		INSERT INTO checklist_items (checklist_item_id, note_id, text, is_checked) VALUES (?, ?, ?, ?)
		ON CONFLICT(checklist_item_id) DO UPDATE SET
			note_id = excluded.note_id, text = excluded.text, is_checked = excluded.is_checked
		RETURNING checklist_item_id`,
	stmtUpdateChecklistItem:        `UPDATE checklist_items SET note_id = ?, text = ?, is_checked = ? WHERE checklist_item_id = ?`,
	stmtDeleteChecklistItem:        `DELETE FROM checklist_items WHERE checklist_item_id = ?`,
	stmtDeleteChecklistItemsByNote: `DELETE FROM checklist_items WHERE note_id = ?`,

	stmtInsertCrossRefIgnore:  `INSERT OR IGNORE INTO note_tag_cross_ref (note_id, tag_id) VALUES (?, ?)`,
	stmtInsertCrossRefReplace: `INSERT OR REPLACE INTO note_tag_cross_ref (note_id, tag_id) VALUES (?, ?)`,
	stmtDeleteCrossRefsByNote: `DELETE FROM note_tag_cross_ref WHERE note_id = ?`,
	stmtDeleteCrossRef:        `DELETE FROM note_tag_cross_ref WHERE note_id = ? AND tag_id = ?`,
}

// statementCache holds one prepared statement per key for the life of the store.
// The map is filled once at open and read-only afterwards.
type statementCache struct {
	stmts map[stmtKey]*sql.Stmt
}

// prepareStatements prepares every statement on db. Preparation happens up front
// because a lazy prepare inside a transaction would wait on the connection the
// transaction holds.
func prepareStatements(ctx context.Context, db *sql.DB) (*statementCache, error) {
	c := &statementCache{stmts: make(map[stmtKey]*sql.Stmt, len(statementSQL))}
	for key, query := range statementSQL {
		stmt, err := db.PrepareContext(ctx, query)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to prepare statement %d: %w", key, err)
		}
		c.stmts[key] = stmt
	}
	return c, nil
}

// Close closes every prepared statement and returns the first error
func (c *statementCache) Close() error {
	var first error
	for key, stmt := range c.stmts {
		if err := stmt.Close(); err != nil && first == nil {
			first = err
		}
		delete(c.stmts, key)
	}
	return first
}

// stmt returns the statement for key, bound to the transaction carried by ctx if any.
// The returned release func must be called once the statement is done.
func (s *SQLiteStorage) stmt(ctx context.Context, key stmtKey) (*sql.Stmt, func(), error) {
	stmt, ok := s.stmts.stmts[key]
	if !ok {
		return nil, nil, fmt.Errorf("statement %d: %w", key, ErrStoreUnavailable)
	}
	if tx := s.txFrom(ctx); tx != nil {
		txStmt := tx.StmtContext(ctx, stmt)
		return txStmt, func() { _ = txStmt.Close() }, nil
	}
	return stmt, func() {}, nil
}

// execStmt runs key with the full argument tuple and returns the affected row count
func (s *SQLiteStorage) execStmt(ctx context.Context, key stmtKey, args ...any) (int64, error) {
	stmt, release, err := s.stmt(ctx, key)
	if err != nil {
		return 0, err
	}
	defer release()

	result, err := stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// execStmtExpectRow is execStmt for updates and deletes by identity:
// zero affected rows is ErrNotFound.
func (s *SQLiteStorage) execStmtExpectRow(ctx context.Context, key stmtKey, args ...any) error {
	n, err := s.execStmt(ctx, key, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// queryRowStmt runs key and scans its single result row into dest
func (s *SQLiteStorage) queryRowStmt(ctx context.Context, key stmtKey, dest []any, args ...any) error {
	stmt, release, err := s.stmt(ctx, key)
	if err != nil {
		return err
	}
	defer release()

	err = stmt.QueryRowContext(ctx, args...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
