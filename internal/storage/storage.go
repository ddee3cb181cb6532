package storage

import (
	"context"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying notes and their details.
// Every method participates in the transaction carried by ctx, if any (see RunInTx).
type Storage interface {
	// Note operations
	InsertNote(ctx context.Context, id types.Identity, note *types.Note) (int64, error)
	GetNote(ctx context.Context, noteID int64) (*types.Note, error)
	UpdateNote(ctx context.Context, note *types.Note) error
	DeleteNote(ctx context.Context, noteID int64) error
	EmptyTrash(ctx context.Context) (deletedCount int, err error)

	// Composite note operations
	CreateNoteWithDetails(ctx context.Context, note *types.Note, items []types.ChecklistItem, tags []types.Tag) (int64, error)
	UpdateNoteWithDetails(ctx context.Context, note *types.Note, items []types.ChecklistItem, tags []types.Tag) error
	LoadAllNotesWithDetails(ctx context.Context) ([]types.NoteWithDetails, error)
	LoadNotesWithDetails(ctx context.Context, filter NoteFilter) ([]types.NoteWithDetails, error)
	LoadNoteByID(ctx context.Context, noteID int64) (*types.NoteWithDetails, error)

	// Tag operations
	UpsertTag(ctx context.Context, id types.Identity, tag *types.Tag) (int64, error)
	InsertTags(ctx context.Context, tags []types.Tag) ([]int64, error)
	UpdateTag(ctx context.Context, tag *types.Tag) error
	DeleteTag(ctx context.Context, tagID int64) error
	GetTags(ctx context.Context) ([]types.Tag, error)
	GetTag(ctx context.Context, tagID int64) (*types.Tag, error)

	// Checklist operations
	InsertChecklistItems(ctx context.Context, items []types.ChecklistItem) ([]int64, error)
	UpdateChecklistItem(ctx context.Context, item *types.ChecklistItem) error
	DeleteChecklistItem(ctx context.Context, itemID int64) error
	GetChecklistItemsForNote(ctx context.Context, noteID int64) ([]types.ChecklistItem, error)

	// Cross-reference operations
	InsertCrossRefs(ctx context.Context, refs []types.NoteTagCrossRef, policy types.ConflictPolicy) error
	DeleteCrossRef(ctx context.Context, ref types.NoteTagCrossRef) error
	DeleteCrossRefsForNote(ctx context.Context, noteID int64) (deletedCount int, err error)

	// Status operations
	Stats(ctx context.Context) (*Stats, error)

	// Database operations
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close() error
}

// NoteFilter narrows LoadNotesWithDetails
type NoteFilter struct {
	Section types.NoteSection // empty means SectionEverything
	TagID   int64             // 0 means any tag
}

// Stats contains row counts and health of the notes database
type Stats struct {
	NotesCount          int
	TrashedNotesCount   int
	TagsCount           int
	ChecklistItemsCount int
	CrossRefsCount      int
	SchemaVersion       string
	DatabaseSizeMB      float64
	Driver              string
	BuildMode           string
	Health              HealthStatus
}

// HealthStatus represents the health of the database
type HealthStatus struct {
	DatabaseAccessible bool
	ForeignKeysEnabled bool
	IntegrityOK        bool
}
