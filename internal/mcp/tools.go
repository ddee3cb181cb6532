package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoughtpad/thoughtpad-mcp/internal/backup"
	"github.com/thoughtpad/thoughtpad-mcp/internal/storage"
	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams    = -32602 // Invalid method parameters
	ErrorCodeInternalError    = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound         = -32001 // Note, tag or checklist item does not exist
	ErrorCodeConstraint       = -32002 // Write rejected by a uniqueness or foreign-key constraint
	ErrorCodeUnavailable      = -32003 // Database cannot be reached
	ErrorCodeEncoding         = -32004 // Stored data could not be decoded
	ErrorCodeImportInProgress = -32005 // Another import is already running
)

// handleCreateNote handles the create_note tool invocation
func (s *Server) handleCreateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	note := &types.Note{CreatedAt: &now, UpdatedAt: &now, Attachments: []string{}}
	if err := applyNoteArgs(note, args); err != nil {
		return nil, err
	}
	items, _, err := parseChecklist(args)
	if err != nil {
		return nil, err
	}
	tags, _, err := parseTags(args)
	if err != nil {
		return nil, err
	}

	details, err := run(ctx, s, func(ctx context.Context) (*types.NoteWithDetails, error) {
		noteID, err := s.storage.CreateNoteWithDetails(ctx, note, items, tags)
		if err != nil {
			return nil, err
		}
		return s.storage.LoadNoteByID(ctx, noteID)
	})
	if err != nil {
		return nil, storeError("failed to create note", err)
	}

	return mcp.NewToolResultText(formatJSON(details)), nil
}

// handleUpdateNote handles the update_note tool invocation
func (s *Server) handleUpdateNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	noteID, err := requireID(args, "note_id")
	if err != nil {
		return nil, err
	}

	// Validate everything before touching the store
	candidate := &types.Note{}
	if err := applyNoteArgs(candidate, args); err != nil {
		return nil, err
	}
	items, replaceItems, err := parseChecklist(args)
	if err != nil {
		return nil, err
	}
	tags, replaceTags, err := parseTags(args)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	details, err := run(ctx, s, func(ctx context.Context) (*types.NoteWithDetails, error) {
		err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
			if !replaceItems && !replaceTags {
				note, err := s.storage.GetNote(ctx, noteID)
				if err != nil {
					return err
				}
				_ = applyNoteArgs(note, args)
				note.UpdatedAt = &now
				return s.storage.UpdateNote(ctx, note)
			}

			current, err := s.storage.LoadNoteByID(ctx, noteID)
			if err != nil {
				return err
			}

			note := current.Note
			_ = applyNoteArgs(&note, args)
			note.UpdatedAt = &now

			if !replaceItems {
				items = current.ChecklistItems
			}
			if !replaceTags {
				tags = current.Tags
			}
			return s.storage.UpdateNoteWithDetails(ctx, &note, items, tags)
		})
		if err != nil {
			return nil, err
		}
		return s.storage.LoadNoteByID(ctx, noteID)
	})
	if err != nil {
		return nil, storeError("failed to update note", err)
	}

	return mcp.NewToolResultText(formatJSON(details)), nil
}

// handleGetNote handles the get_note tool invocation
func (s *Server) handleGetNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	noteID, err := requireID(args, "note_id")
	if err != nil {
		return nil, err
	}

	details, err := run(ctx, s, func(ctx context.Context) (*types.NoteWithDetails, error) {
		return s.storage.LoadNoteByID(ctx, noteID)
	})
	if err != nil {
		return nil, storeError("failed to get note", err)
	}

	return mcp.NewToolResultText(formatJSON(details)), nil
}

// handleListNotes handles the list_notes tool invocation
func (s *Server) handleListNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}

	section := types.NoteSection(getStringDefault(args, "section", string(types.SectionAll)))
	if !section.Valid() {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid section", map[string]interface{}{
			"param":   "section",
			"value":   section,
			"allowed": sections,
		})
	}
	tagID, _, err := optionalInt(args, "tag_id")
	if err != nil {
		return nil, err
	}

	filter := storage.NoteFilter{Section: section, TagID: tagID}
	notes, err := run(ctx, s, func(ctx context.Context) ([]types.NoteWithDetails, error) {
		return s.storage.LoadNotesWithDetails(ctx, filter)
	})
	if err != nil {
		return nil, storeError("failed to list notes", err)
	}

	response := map[string]interface{}{
		"section": section,
		"count":   len(notes),
		"notes":   notes,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteNote handles the delete_note tool invocation
func (s *Server) handleDeleteNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	noteID, err := requireID(args, "note_id")
	if err != nil {
		return nil, err
	}
	permanent := getBoolDefault(args, "permanent", false)

	now := s.timestamp()
	_, err = run(ctx, s, func(ctx context.Context) (struct{}, error) {
		if permanent {
			return struct{}{}, s.storage.DeleteNote(ctx, noteID)
		}
		return struct{}{}, s.storage.RunInTx(ctx, func(ctx context.Context) error {
			note, err := s.storage.GetNote(ctx, noteID)
			if err != nil {
				return err
			}
			note.IsDeleted = true
			note.UpdatedAt = &now
			return s.storage.UpdateNote(ctx, note)
		})
	})
	if err != nil {
		return nil, storeError("failed to delete note", err)
	}

	response := map[string]interface{}{
		"deleted":   true,
		"note_id":   noteID,
		"permanent": permanent,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleEmptyTrash handles the empty_trash tool invocation
func (s *Server) handleEmptyTrash(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	deleted, err := run(ctx, s, s.storage.EmptyTrash)
	if err != nil {
		return nil, storeError("failed to empty trash", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"deleted_count": deleted})), nil
}

// handleListTags handles the list_tags tool invocation
func (s *Server) handleListTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := run(ctx, s, s.storage.GetTags)
	if err != nil {
		return nil, storeError("failed to list tags", err)
	}

	response := map[string]interface{}{
		"count": len(tags),
		"tags":  tags,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpsertTag handles the upsert_tag tool invocation
func (s *Server) handleUpsertTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	tag, err := parseTag(args, "")
	if err != nil {
		return nil, err
	}

	saved, err := run(ctx, s, func(ctx context.Context) (*types.Tag, error) {
		tagID, err := s.storage.UpsertTag(ctx, types.IdentityOf(tag.ID), &tag)
		if err != nil {
			return nil, err
		}
		return s.storage.GetTag(ctx, tagID)
	})
	if err != nil {
		return nil, storeError("failed to save tag", err)
	}

	return mcp.NewToolResultText(formatJSON(saved)), nil
}

// handleDeleteTag handles the delete_tag tool invocation
func (s *Server) handleDeleteTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	tagID, err := requireID(args, "tag_id")
	if err != nil {
		return nil, err
	}

	_, err = run(ctx, s, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.storage.DeleteTag(ctx, tagID)
	})
	if err != nil {
		return nil, storeError("failed to delete tag", err)
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{"deleted": true, "tag_id": tagID})), nil
}

// handleGetChecklist handles the get_checklist tool invocation
func (s *Server) handleGetChecklist(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	noteID, err := requireID(args, "note_id")
	if err != nil {
		return nil, err
	}

	items, err := run(ctx, s, func(ctx context.Context) ([]types.ChecklistItem, error) {
		return s.storage.GetChecklistItemsForNote(ctx, noteID)
	})
	if err != nil {
		return nil, storeError("failed to get checklist", err)
	}

	response := map[string]interface{}{
		"note_id": noteID,
		"items":   items,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleExportNotes handles the export_notes tool invocation
func (s *Server) handleExportNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	if err := validateExportPath(path); err != nil {
		return nil, invalidPath(err)
	}

	doc, err := run(ctx, s, func(ctx context.Context) (*backup.Document, error) {
		return backup.ExportFile(ctx, s.storage, path)
	})
	if err != nil {
		return nil, storeError("export failed", err)
	}

	response := map[string]interface{}{
		"path":           path,
		"export_id":      doc.ExportID,
		"schema_version": doc.SchemaVersion,
		"tags_count":     len(doc.Tags),
		"notes_count":    len(doc.Notes),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleImportNotes handles the import_notes tool invocation
func (s *Server) handleImportNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := arguments(request)
	if err != nil {
		return nil, err
	}
	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}
	if err := validateImportPath(path); err != nil {
		return nil, invalidPath(err)
	}

	workers := getIntDefault(args, "workers", s.pool.Workers())
	if workers < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "workers must be at least 1", map[string]interface{}{
			"param": "workers",
			"value": workers,
		})
	}
	opts := &backup.Options{
		Workers: workers,
		KeepIDs: getBoolDefault(args, "keep_ids", false),
	}

	stats, err := run(ctx, s, func(ctx context.Context) (*backup.Statistics, error) {
		return s.importer.ImportFile(ctx, path, opts)
	})
	if errors.Is(err, backup.ErrImportInProgress) {
		return nil, newMCPError(ErrorCodeImportInProgress, "another import is already running", nil)
	}
	if err != nil {
		return nil, storeError("import failed", err)
	}

	response := map[string]interface{}{
		"tags_imported":  stats.TagsImported,
		"notes_imported": stats.NotesImported,
		"notes_failed":   stats.NotesFailed,
		"duration_ms":    stats.Duration.Milliseconds(),
	}
	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := run(ctx, s, s.storage.Stats)
	if err != nil {
		return nil, storeError("failed to get status", err)
	}

	response := map[string]interface{}{
		"schema_version": stats.SchemaVersion,
		"driver":         stats.Driver,
		"build_mode":     stats.BuildMode,
		"workers":        s.pool.Workers(),
		"statistics": map[string]interface{}{
			"notes_count":           stats.NotesCount,
			"trashed_notes_count":   stats.TrashedNotesCount,
			"tags_count":            stats.TagsCount,
			"checklist_items_count": stats.ChecklistItemsCount,
			"cross_refs_count":      stats.CrossRefsCount,
			"database_size_mb":      fmt.Sprintf("%.2f", stats.DatabaseSizeMB),
		},
		"health": map[string]interface{}{
			"database_accessible":  stats.Health.DatabaseAccessible,
			"foreign_keys_enabled": stats.Health.ForeignKeysEnabled,
			"integrity_ok":         stats.Health.IntegrityOK,
		},
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// storeError maps a storage error class onto an MCP error code
func storeError(message string, err error) error {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	code := ErrorCodeInternalError
	switch {
	case errors.Is(err, types.ErrNotFound):
		code = ErrorCodeNotFound
	case errors.Is(err, types.ErrConstraintViolation):
		code = ErrorCodeConstraint
	case errors.Is(err, types.ErrStoreUnavailable):
		code = ErrorCodeUnavailable
	case errors.Is(err, types.ErrEncoding):
		code = ErrorCodeEncoding
	case errors.Is(err, types.ErrInvalidIdentity), errors.Is(err, types.ErrInvalidPolicy):
		code = ErrorCodeInvalidParams
	}
	return newMCPError(code, message, map[string]interface{}{
		"error": err.Error(),
	})
}

func invalidParam(param, reason string) error {
	return newMCPError(ErrorCodeInvalidParams, "invalid "+param, map[string]interface{}{
		"param":  param,
		"reason": reason,
	})
}

func invalidPath(err error) error {
	return newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]interface{}{
		"param":  "path",
		"reason": err.Error(),
	})
}

// arguments returns the call arguments; a call without arguments yields an empty map
func arguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// applyNoteArgs copies the note fields present in args onto note
func applyNoteArgs(note *types.Note, args map[string]interface{}) error {
	for _, field := range []struct {
		key string
		dst **string
	}{{"title", &note.Title}, {"body", &note.Body}} {
		value, present, err := optionalString(args, field.key)
		if err != nil {
			return err
		}
		if present {
			*field.dst = value
		}
	}

	for _, field := range []struct {
		key string
		dst *bool
	}{
		{"is_pinned", &note.IsPinned},
		{"is_archived", &note.IsArchived},
		{"is_favorite", &note.IsFavorite},
		{"is_deleted", &note.IsDeleted},
		{"is_check_list", &note.IsCheckList},
	} {
		raw, ok := args[field.key]
		if !ok {
			continue
		}
		value, ok := raw.(bool)
		if !ok {
			return invalidParam(field.key, "must be a boolean")
		}
		*field.dst = value
	}

	color, present, err := optionalInt(args, "color")
	if err != nil {
		return err
	}
	if present {
		if color < int64(types.NoteColorDefault) || color > int64(types.NoteColorBurntOrange) {
			return invalidParam("color", "out of range")
		}
		note.Color = types.NoteColor(color)
	}

	reminder, present, err := optionalString(args, "reminder_time")
	if err != nil {
		return err
	}
	if present {
		note.ReminderTime = nil
		if reminder != nil {
			t, err := time.Parse(time.RFC3339, *reminder)
			if err != nil {
				return invalidParam("reminder_time", "must be an RFC 3339 time")
			}
			note.ReminderTime = types.Time(t.UTC())
		}
	}

	if raw, ok := args["attachments"]; ok {
		list, ok := raw.([]interface{})
		if !ok && raw != nil {
			return invalidParam("attachments", "must be an array of strings")
		}
		attachments := make([]string, 0, len(list))
		for _, v := range list {
			uri, ok := v.(string)
			if !ok {
				return invalidParam("attachments", "must be an array of strings")
			}
			attachments = append(attachments, uri)
		}
		note.Attachments = attachments
	}

	return nil
}

// parseChecklist reads the checklist argument; present reports whether it was given
func parseChecklist(args map[string]interface{}) (items []types.ChecklistItem, present bool, err error) {
	list, present, err := optionalObjects(args, "checklist")
	if err != nil || !present {
		return nil, present, err
	}

	items = make([]types.ChecklistItem, 0, len(list))
	for _, obj := range list {
		text, _, err := optionalString(obj, "text")
		if err != nil {
			return nil, true, err
		}
		checked := false
		if raw, ok := obj["is_checked"]; ok {
			if checked, ok = raw.(bool); !ok {
				return nil, true, invalidParam("is_checked", "must be a boolean")
			}
		}
		items = append(items, types.ChecklistItem{Text: text, IsChecked: checked})
	}
	return items, true, nil
}

// parseTags reads the tags argument; present reports whether it was given
func parseTags(args map[string]interface{}) (tags []types.Tag, present bool, err error) {
	list, present, err := optionalObjects(args, "tags")
	if err != nil || !present {
		return nil, present, err
	}

	tags = make([]types.Tag, 0, len(list))
	for _, obj := range list {
		tag, err := parseTag(obj, "tags.")
		if err != nil {
			return nil, true, err
		}
		tags = append(tags, tag)
	}
	return tags, true, nil
}

func parseTag(args map[string]interface{}, prefix string) (types.Tag, error) {
	var tag types.Tag

	id, _, err := optionalInt(args, "tag_id")
	if err != nil {
		return tag, err
	}
	if id < 0 {
		return tag, invalidParam(prefix+"tag_id", "must not be negative")
	}
	tag.ID = id

	if tag.Name, _, err = optionalString(args, "name"); err != nil {
		return tag, err
	}

	color, present, err := optionalInt(args, "color")
	if err != nil {
		return tag, err
	}
	if present {
		if color < int64(types.TagColorRed) || color > int64(types.TagColorBrown) {
			return tag, invalidParam(prefix+"color", "out of range")
		}
		tag.Color = types.Color(types.TagColor(color))
	}
	return tag, nil
}

// optionalString returns the string under key; JSON null yields a nil value
func optionalString(args map[string]interface{}, key string) (value *string, present bool, err error) {
	raw, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return nil, true, nil
	}
	s, ok := raw.(string)
	if !ok {
		return nil, true, invalidParam(key, "must be a string")
	}
	return &s, true, nil
}

// optionalInt returns the integer under key
func optionalInt(args map[string]interface{}, key string) (value int64, present bool, err error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return 0, false, nil
	}
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, true, invalidParam(key, "must be an integer")
		}
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, true, invalidParam(key, "must be an integer")
		}
		return n, true, nil
	}
	return 0, true, invalidParam(key, "must be an integer")
}

// optionalObjects returns the array of objects under key
func optionalObjects(args map[string]interface{}, key string) ([]map[string]interface{}, bool, error) {
	raw, ok := args[key]
	if !ok {
		return nil, false, nil
	}
	if raw == nil {
		return []map[string]interface{}{}, true, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, true, invalidParam(key, "must be an array of objects")
	}
	objects := make([]map[string]interface{}, 0, len(list))
	for _, v := range list {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return nil, true, invalidParam(key, "must be an array of objects")
		}
		objects = append(objects, obj)
	}
	return objects, true, nil
}

// requireID returns the positive identity under key
func requireID(args map[string]interface{}, key string) (int64, error) {
	id, present, err := optionalInt(args, key)
	if err != nil {
		return 0, err
	}
	if !present {
		return 0, newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing",
		})
	}
	if id < 1 {
		return 0, invalidParam(key, "must be positive")
	}
	return id, nil
}

func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}
	return path, nil
}

// validateExportPath checks that path is absolute and its directory exists
func validateExportPath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(filepath.Dir(path))
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}
	return nil
}

// validateImportPath checks that path is absolute and names a readable regular file
func validateImportPath(path string) error {
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.Mode().IsRegular() {
		return ErrNotRegularFile
	}
	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()
	return nil
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("parent is not a directory")
	ErrNotRegularFile  = errors.New("path is not a regular file")
)
