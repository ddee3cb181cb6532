package types

import "time"

// NoteColor is the persisted color code of a note
type NoteColor int64

const (
	NoteColorDefault NoteColor = iota
	NoteColorBlue
	NoteColorSoftGreen
	NoteColorGreen
	NoteColorPink
	NoteColorCyan
	NoteColorCoral
	NoteColorYellow
	NoteColorLavender
	NoteColorBurntOrange
)

// Note is a single note. Nil pointer fields are stored as NULL.
type Note struct {
	ID           int64      `json:"note_id"`
	Title        *string    `json:"title,omitempty"`
	Body         *string    `json:"body,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	IsPinned     bool       `json:"is_pinned"`
	IsArchived   bool       `json:"is_archived"`
	IsFavorite   bool       `json:"is_favorite"`
	IsDeleted    bool       `json:"is_deleted"` // soft delete, no cascade attached
	IsCheckList  bool       `json:"is_check_list"`
	Color        NoteColor  `json:"color"`
	ReminderTime *time.Time `json:"reminder_time,omitempty"`
	Attachments  []string   `json:"attachments"`
}

// ChecklistItem is one line of a note's checklist
type ChecklistItem struct {
	ID        int64   `json:"checklist_item_id"`
	NoteID    *int64  `json:"note_id,omitempty"`
	Text      *string `json:"text,omitempty"`
	IsChecked bool    `json:"is_checked"`
}

// NoteTagCrossRef associates a note with a tag
type NoteTagCrossRef struct {
	NoteID int64 `json:"note_id"`
	TagID  int64 `json:"tag_id"`
}

// NoteWithDetails is a note together with its checklist items and tags
type NoteWithDetails struct {
	Note           Note            `json:"note"`
	ChecklistItems []ChecklistItem `json:"checklist_items"`
	Tags           []Tag           `json:"tags"`
}

// NoteSection selects a subset of notes, mirroring the sections of the notes list
type NoteSection string

const (
	SectionAll        NoteSection = "all"       // not archived, not deleted
	SectionPinned     NoteSection = "pinned"    // pinned, not archived, not deleted
	SectionArchived   NoteSection = "archived"  // archived, not deleted
	SectionTrash      NoteSection = "trash"     // soft-deleted
	SectionReminders  NoteSection = "reminders" // has a reminder, not deleted
	SectionEverything NoteSection = "everything"
)

// Valid reports whether s is a known section
func (s NoteSection) Valid() bool {
	switch s {
	case SectionAll, SectionPinned, SectionArchived, SectionTrash, SectionReminders, SectionEverything:
		return true
	}
	return false
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}

// Int64 returns a pointer to v
func Int64(v int64) *int64 {
	return &v
}

// Time returns a pointer to t
func Time(t time.Time) *time.Time {
	return &t
}
