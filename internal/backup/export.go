package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// Document is the serialized form of a backup
type Document struct {
	ExportID      string                  `json:"export_id"`
	ExportedAt    time.Time               `json:"exported_at"`
	SchemaVersion string                  `json:"schema_version"`
	Tags          []types.Tag             `json:"tags"`
	Notes         []types.NoteWithDetails `json:"notes"`
}

// Snapshot reads every tag and note in one transaction
func Snapshot(ctx context.Context, store storage.Storage) (*Document, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate export id: %w", err)
	}
	doc := &Document{
		ExportID:   id.String(),
		ExportedAt: time.Now().UTC(),
	}

	err = store.RunInTx(ctx, func(ctx context.Context) error {
		stats, err := store.Stats(ctx)
		if err != nil {
			return err
		}
		doc.SchemaVersion = stats.SchemaVersion

		if doc.Tags, err = store.GetTags(ctx); err != nil {
			return err
		}
		doc.Notes, err = store.LoadAllNotesWithDetails(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read notes: %w", err)
	}
	return doc, nil
}

// Export writes a snapshot of store to w as indented JSON
func Export(ctx context.Context, store storage.Storage, w io.Writer) (*Document, error) {
	doc, err := Snapshot(ctx, store)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return doc, nil
}

// ExportFile writes a snapshot of store to path, replacing any existing file atomically
func ExportFile(ctx context.Context, store storage.Storage, path string) (*Document, error) {
	var buf bytes.Buffer
	doc, err := Export(ctx, store, &buf)
	if err != nil {
		return nil, err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return nil, fmt.Errorf("failed to write backup %s: %w", path, err)
	}
	return doc, nil
}
