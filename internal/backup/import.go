package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/sync/errgroup"

	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// ErrImportInProgress is returned when an import is already running on the Importer
var ErrImportInProgress = errors.New("import already in progress")

// Importer restores backup documents into a store
type Importer struct {
	storage storage.Storage
	lock    importLock
}

// Options contains configuration for an import
type Options struct {
	Workers int  // Number of concurrent note writers (default: runtime.NumCPU())
	KeepIDs bool // Restore notes under their exported identities, replacing existing notes
}

// Statistics contains statistics about the import operation
type Statistics struct {
	TagsImported  int
	NotesImported int
	NotesFailed   int
	Duration      time.Duration
	ErrorMessages []string
}

// NewImporter creates a new Importer instance
func NewImporter(store storage.Storage) *Importer {
	return &Importer{storage: store}
}

// ImportFile imports the backup stored at path
func (im *Importer) ImportFile(ctx context.Context, path string, opts *Options) (*Statistics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = f.Close() }()
	return im.Import(ctx, f, opts)
}

// Import decodes a backup document from r and writes it to the store
func (im *Importer) Import(ctx context.Context, r io.Reader, opts *Options) (*Statistics, error) {
	if !im.lock.TryAcquire() {
		return nil, ErrImportInProgress
	}
	defer im.lock.Release()

	if opts == nil {
		opts = &Options{}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if err := checkSchemaVersion(doc.SchemaVersion); err != nil {
		return nil, err
	}

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	tagsImported, tagIDs, err := im.importTags(ctx, &doc, opts.KeepIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to import tags: %w", err)
	}
	stats.TagsImported = tagsImported

	if err := im.importNotes(ctx, doc.Notes, workers, opts.KeepIDs, tagIDs, stats); err != nil {
		return nil, fmt.Errorf("failed to import notes: %w", err)
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// checkSchemaVersion refuses documents written by a newer major schema
func checkSchemaVersion(version string) error {
	if version == "" {
		return nil
	}
	docVersion, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid backup schema version %q: %w", version, err)
	}
	current := semver.MustParse(storage.CurrentSchemaVersion)
	if docVersion.Major() > current.Major() {
		return fmt.Errorf("backup schema %s is newer than supported %s", docVersion, current)
	}
	return nil
}

// importTags writes the document's tags in one transaction. With keepIDs each tag
// replaces the stored tag of the same identity. Otherwise every tag, including
// tags only referenced from notes, is stored under a fresh identity so existing
// tags are never overwritten; the returned map translates exported identities.
func (im *Importer) importTags(ctx context.Context, doc *Document, keepIDs bool) (int, map[int64]int64, error) {
	if keepIDs {
		if len(doc.Tags) == 0 {
			return 0, nil, nil
		}
		if _, err := im.storage.InsertTags(ctx, doc.Tags); err != nil {
			return 0, nil, err
		}
		return len(doc.Tags), nil, nil
	}

	var (
		tags     []types.Tag
		exported []int64
		seen     = make(map[int64]bool)
	)
	add := func(tag types.Tag) {
		if tag.ID == 0 || seen[tag.ID] {
			return
		}
		seen[tag.ID] = true
		exported = append(exported, tag.ID)
		tag.ID = 0
		tags = append(tags, tag)
	}
	for _, tag := range doc.Tags {
		add(tag)
	}
	for _, n := range doc.Notes {
		for _, tag := range n.Tags {
			add(tag)
		}
	}

	tagIDs := make(map[int64]int64, len(tags))
	if len(tags) == 0 {
		return 0, tagIDs, nil
	}
	ids, err := im.storage.InsertTags(ctx, tags)
	if err != nil {
		return 0, nil, err
	}
	for i, old := range exported {
		tagIDs[old] = ids[i]
	}
	return len(tags), tagIDs, nil
}

// importNotes writes notes concurrently. A failing note is recorded and skipped;
// only cancellation stops the import.
func (im *Importer) importNotes(ctx context.Context, notes []types.NoteWithDetails, workers int, keepIDs bool, tagIDs map[int64]int64, stats *Statistics) error {
	var (
		imported int32
		failed   int32
		mu       sync.Mutex // Protect stats.ErrorMessages
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, n := range notes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := im.importNote(gctx, n, keepIDs, tagIDs); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				mu.Lock()
				stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("note %d: %v", n.Note.ID, err))
				mu.Unlock()
				return nil
			}
			atomic.AddInt32(&imported, 1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stats.NotesImported = int(imported)
	stats.NotesFailed = int(failed)
	return nil
}

// importNote writes one note with its checklist items and tags in one transaction
// Without keepIDs, tag identities are translated through tagIDs.
func (im *Importer) importNote(ctx context.Context, n types.NoteWithDetails, keepIDs bool, tagIDs map[int64]int64) error {
	note := n.Note
	if !keepIDs {
		note.ID = 0
		tags := make([]types.Tag, len(n.Tags))
		for i, tag := range n.Tags {
			if id, ok := tagIDs[tag.ID]; ok {
				tag.ID = id
			}
			tags[i] = tag
		}
		_, err := im.storage.CreateNoteWithDetails(ctx, &note, n.ChecklistItems, tags)
		return err
	}

	return im.storage.RunInTx(ctx, func(ctx context.Context) error {
		_, err := im.storage.GetNote(ctx, note.ID)
		switch {
		case err == nil:
			return im.storage.UpdateNoteWithDetails(ctx, &note, n.ChecklistItems, n.Tags)
		case errors.Is(err, types.ErrNotFound):
			_, err = im.storage.CreateNoteWithDetails(ctx, &note, n.ChecklistItems, n.Tags)
			return err
		default:
			return err
		}
	})
}
