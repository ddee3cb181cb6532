package storage

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// noteRow is the flat column form of a note
type noteRow struct {
	ID           int64
	Title        sql.NullString
	Body         sql.NullString
	CreatedAt    sql.NullInt64
	UpdatedAt    sql.NullInt64
	IsPinned     int64
	IsArchived   int64
	IsFavorite   int64
	IsDeleted    int64
	IsCheckList  int64
	Color        int64
	ReminderTime sql.NullInt64
	Attachments  string
}

// noteColumns lists the notes columns in noteRow field order
const noteColumns = `note_id, title, body, created_at, updated_at, is_pinned, is_archived,
	is_favorite, is_deleted, is_check_list, color, reminder_time, attachments`

// dest returns scan destinations in noteColumns order
func (r *noteRow) dest() []any {
	return []any{
		&r.ID, &r.Title, &r.Body, &r.CreatedAt, &r.UpdatedAt, &r.IsPinned, &r.IsArchived,
		&r.IsFavorite, &r.IsDeleted, &r.IsCheckList, &r.Color, &r.ReminderTime, &r.Attachments,
	}
}

// values returns every column except note_id, in noteColumns order
func (r *noteRow) values() []any {
	return []any{
		r.Title, r.Body, r.CreatedAt, r.UpdatedAt, r.IsPinned, r.IsArchived,
		r.IsFavorite, r.IsDeleted, r.IsCheckList, r.Color, r.ReminderTime, r.Attachments,
	}
}

type tagRow struct {
	ID    int64
	Name  sql.NullString
	Color sql.NullInt64
}

const tagColumns = `tag_id, name, color`

func (r *tagRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.Color}
}

type checklistRow struct {
	ID        int64
	NoteID    sql.NullInt64
	Text      sql.NullString
	IsChecked int64
}

const checklistColumns = `checklist_item_id, note_id, text, is_checked`

func (r *checklistRow) dest() []any {
	return []any{&r.ID, &r.NoteID, &r.Text, &r.IsChecked}
}

func encodeNote(n *types.Note) (noteRow, error) {
	attachments, err := encodeAttachments(n.Attachments)
	if err != nil {
		return noteRow{}, err
	}
	return noteRow{
		ID:           n.ID,
		Title:        encodeString(n.Title),
		Body:         encodeString(n.Body),
		CreatedAt:    encodeTime(n.CreatedAt),
		UpdatedAt:    encodeTime(n.UpdatedAt),
		IsPinned:     encodeBool(n.IsPinned),
		IsArchived:   encodeBool(n.IsArchived),
		IsFavorite:   encodeBool(n.IsFavorite),
		IsDeleted:    encodeBool(n.IsDeleted),
		IsCheckList:  encodeBool(n.IsCheckList),
		Color:        int64(n.Color),
		ReminderTime: encodeTime(n.ReminderTime),
		Attachments:  attachments,
	}, nil
}

func decodeNote(r noteRow) (*types.Note, error) {
	attachments, err := decodeAttachments(r.Attachments)
	if err != nil {
		return nil, fmt.Errorf("note %d: %w", r.ID, err)
	}
	return &types.Note{
		ID:           r.ID,
		Title:        decodeString(r.Title),
		Body:         decodeString(r.Body),
		CreatedAt:    decodeTime(r.CreatedAt),
		UpdatedAt:    decodeTime(r.UpdatedAt),
		IsPinned:     r.IsPinned != 0,
		IsArchived:   r.IsArchived != 0,
		IsFavorite:   r.IsFavorite != 0,
		IsDeleted:    r.IsDeleted != 0,
		IsCheckList:  r.IsCheckList != 0,
		Color:        types.NoteColor(r.Color),
		ReminderTime: decodeTime(r.ReminderTime),
		Attachments:  attachments,
	}, nil
}

func encodeTag(t *types.Tag) tagRow {
	row := tagRow{ID: t.ID, Name: encodeString(t.Name)}
	if t.Color != nil {
		row.Color = sql.NullInt64{Int64: int64(*t.Color), Valid: true}
	}
	return row
}

func decodeTag(r tagRow) types.Tag {
	tag := types.Tag{ID: r.ID, Name: decodeString(r.Name)}
	if r.Color.Valid {
		c := types.TagColor(r.Color.Int64)
		tag.Color = &c
	}
	return tag
}

func encodeChecklistItem(item *types.ChecklistItem) checklistRow {
	row := checklistRow{
		ID:        item.ID,
		Text:      encodeString(item.Text),
		IsChecked: encodeBool(item.IsChecked),
	}
	if item.NoteID != nil {
		row.NoteID = sql.NullInt64{Int64: *item.NoteID, Valid: true}
	}
	return row
}

func decodeChecklistItem(r checklistRow) types.ChecklistItem {
	item := types.ChecklistItem{
		ID:        r.ID,
		Text:      decodeString(r.Text),
		IsChecked: r.IsChecked != 0,
	}
	if r.NoteID.Valid {
		id := r.NoteID.Int64
		item.NoteID = &id
	}
	return item
}

func encodeBool(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func encodeString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func decodeString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// Timestamps are stored as Unix milliseconds
func encodeTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func decodeTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.UnixMilli(v.Int64).UTC()
	return &t
}

// rawAttachment holds an attachment path that is not valid UTF-8. JSON strings
// cannot carry such bytes, so the path is stored base64-encoded in an object.
type rawAttachment struct {
	Bytes []byte `json:"b64"`
}

// encodeAttachments stores attachment paths as a JSON array. An empty list is "[]".
// Paths that are valid UTF-8 are plain strings; any other path is a {"b64": ...} object.
func encodeAttachments(paths []string) (string, error) {
	if len(paths) == 0 {
		return "[]", nil
	}
	entries := make([]any, len(paths))
	for i, p := range paths {
		if utf8.ValidString(p) {
			entries[i] = p
		} else {
			entries[i] = rawAttachment{Bytes: []byte(p)}
		}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode attachments: %w: %w", ErrEncoding, err)
	}
	return string(data), nil
}

// decodeAttachments is the inverse of encodeAttachments. It never returns a nil slice.
func decodeAttachments(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "null" {
		return []string{}, nil
	}
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(s), &entries); err != nil {
		return nil, fmt.Errorf("failed to decode attachments %q: %w: %w", s, ErrEncoding, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		path, err := decodeAttachment(entry)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachments %q: %w: %w", s, ErrEncoding, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func decodeAttachment(entry json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(entry)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var raw rawAttachment
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&raw); err != nil {
			return "", err
		}
		if raw.Bytes == nil {
			return "", errors.New("attachment object without b64 field")
		}
		return string(raw.Bytes), nil
	}
	var path string
	if err := json.Unmarshal(trimmed, &path); err != nil {
		return "", err
	}
	return path, nil
}
