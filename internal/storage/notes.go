package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// CreateNoteWithDetails inserts note, its checklist items and its tag associations
// in one transaction and returns the note's identity. A zero note.ID generates a
// new identity, which is written back into note.ID on success. A non-zero note.ID
// that names an existing note replaces it together with all of its checklist
// items and tag associations.
//
// Items always receive fresh identities and are keyed to the note. A tag with a
// zero ID is created; a tag with an ID is inserted only if no tag holds that ID.
// Associations that already exist are kept.
func (s *SQLiteStorage) CreateNoteWithDetails(ctx context.Context, note *types.Note, items []types.ChecklistItem, tags []types.Tag) (int64, error) {
	originalID := note.ID
	var noteID int64
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		id, err := s.InsertNote(ctx, types.IdentityOf(note.ID), note)
		if err != nil {
			return err
		}
		noteID = id

		// A supplied identity may name an existing note; its children are replaced, not merged
		if originalID != 0 {
			if err := s.clearDetails(ctx, noteID); err != nil {
				return err
			}
		}

		if err := s.replaceChecklistItems(ctx, noteID, items); err != nil {
			return err
		}
		return s.linkTags(ctx, noteID, tags, stmtInsertCrossRefIgnore)
	})
	if err != nil {
		note.ID = originalID
		return 0, classify("failed to create note with details", err)
	}
	return noteID, nil
}

// UpdateNoteWithDetails replaces an existing note together with its full set of
// checklist items and tag associations in one transaction.
func (s *SQLiteStorage) UpdateNoteWithDetails(ctx context.Context, note *types.Note, items []types.ChecklistItem, tags []types.Tag) error {
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.UpdateNote(ctx, note); err != nil {
			return err
		}

		if err := s.clearDetails(ctx, note.ID); err != nil {
			return err
		}
		if err := s.replaceChecklistItems(ctx, note.ID, items); err != nil {
			return err
		}
		return s.linkTags(ctx, note.ID, tags, stmtInsertCrossRefReplace)
	})
	return classify("failed to update note with details", err)
}

// clearDetails deletes the checklist items and tag associations of noteID
func (s *SQLiteStorage) clearDetails(ctx context.Context, noteID int64) error {
	if _, err := s.execStmt(ctx, stmtDeleteChecklistItemsByNote, noteID); err != nil {
		return fmt.Errorf("failed to delete checklist items: %w", err)
	}
	if _, err := s.DeleteCrossRefsForNote(ctx, noteID); err != nil {
		return err
	}
	return nil
}

// replaceChecklistItems inserts copies of items keyed to noteID under fresh identities
func (s *SQLiteStorage) replaceChecklistItems(ctx context.Context, noteID int64, items []types.ChecklistItem) error {
	for _, item := range items {
		item.ID = 0
		item.NoteID = &noteID
		if _, err := s.insertChecklistItem(ctx, types.NewIdentity(), &item); err != nil {
			return fmt.Errorf("failed to insert checklist item: %w", err)
		}
	}
	return nil
}

// linkTags ensures each tag exists and associates it with noteID using the cross-ref statement key
func (s *SQLiteStorage) linkTags(ctx context.Context, noteID int64, tags []types.Tag, key stmtKey) error {
	for _, tag := range tags {
		if tag.ID == 0 {
			if _, err := s.UpsertTag(ctx, types.NewIdentity(), &tag); err != nil {
				return err
			}
		} else if err := s.insertTagIfAbsent(ctx, &tag); err != nil {
			return fmt.Errorf("failed to insert tag %d: %w", tag.ID, err)
		}

		if _, err := s.execStmt(ctx, key, noteID, tag.ID); err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tag.ID, err)
		}
	}
	return nil
}

// LoadAllNotesWithDetails returns every note, newest identity first, with its
// checklist items and tags
func (s *SQLiteStorage) LoadAllNotesWithDetails(ctx context.Context) ([]types.NoteWithDetails, error) {
	return s.LoadNotesWithDetails(ctx, NoteFilter{Section: types.SectionEverything})
}

// LoadNotesWithDetails returns the notes matching filter, newest identity first
func (s *SQLiteStorage) LoadNotesWithDetails(ctx context.Context, filter NoteFilter) ([]types.NoteWithDetails, error) {
	where, args, err := filter.where()
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	var notes []types.NoteWithDetails
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		notes, err = s.loadNotes(ctx, `SELECT `+noteColumns+` FROM notes`+where+` ORDER BY note_id DESC`, args...)
		return err
	})
	if err != nil {
		return nil, classify("failed to load notes", err)
	}
	return notes, nil
}

// LoadNoteByID returns one note with its checklist items and tags
func (s *SQLiteStorage) LoadNoteByID(ctx context.Context, noteID int64) (*types.NoteWithDetails, error) {
	var notes []types.NoteWithDetails
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		notes, err = s.loadNotes(ctx, `SELECT `+noteColumns+` FROM notes WHERE note_id = ?`, noteID)
		return err
	})
	if err != nil {
		return nil, classify("failed to load note", err)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("failed to load note %d: %w", noteID, ErrNotFound)
	}
	return &notes[0], nil
}

// loadNotes runs a notes query and attaches the relations of every returned note.
// Any row that fails to decode fails the whole load.
func (s *SQLiteStorage) loadNotes(ctx context.Context, query string, args ...any) ([]types.NoteWithDetails, error) {
	q := s.querier(ctx)
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}

	var notes []types.NoteWithDetails
	for rows.Next() {
		var row noteRow
		if err := rows.Scan(row.dest()...); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		note, err := decodeNote(row)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		notes = append(notes, types.NoteWithDetails{Note: *note})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	// The relation queries need the single connection this cursor holds
	_ = rows.Close()

	items := make(map[int64][]types.ChecklistItem, len(notes))
	tags := make(map[int64][]types.Tag, len(notes))
	for _, n := range notes {
		items[n.Note.ID] = []types.ChecklistItem{}
		tags[n.Note.ID] = []types.Tag{}
	}
	if err := loadRelation(ctx, q, checklistItemsByNote, items, s.opts.MaxBindParameters); err != nil {
		return nil, err
	}
	if err := loadRelation(ctx, q, tagsByNote, tags, s.opts.MaxBindParameters); err != nil {
		return nil, err
	}

	if notes == nil {
		notes = []types.NoteWithDetails{}
	}
	for i := range notes {
		notes[i].ChecklistItems = items[notes[i].Note.ID]
		notes[i].Tags = tags[notes[i].Note.ID]
	}
	return notes, nil
}

// where renders the filter as a WHERE clause with its arguments
func (f NoteFilter) where() (string, []any, error) {
	var conds []string
	var args []any

	switch f.Section {
	case "", types.SectionEverything:
	case types.SectionAll:
		conds = append(conds, "is_archived = 0", "is_deleted = 0")
	case types.SectionPinned:
		conds = append(conds, "is_pinned = 1", "is_archived = 0", "is_deleted = 0")
	case types.SectionArchived:
		conds = append(conds, "is_archived = 1", "is_deleted = 0")
	case types.SectionTrash:
		conds = append(conds, "is_deleted = 1")
	case types.SectionReminders:
		conds = append(conds, "reminder_time IS NOT NULL", "is_deleted = 0")
	default:
		return "", nil, fmt.Errorf("unknown section %q", f.Section)
	}

	if f.TagID != 0 {
		conds = append(conds, "note_id IN (SELECT note_id FROM note_tag_cross_ref WHERE tag_id = ?)")
		args = append(args, f.TagID)
	}

	if len(conds) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
