package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

var sections = []string{
	string(types.SectionAll),
	string(types.SectionPinned),
	string(types.SectionArchived),
	string(types.SectionTrash),
	string(types.SectionReminders),
	string(types.SectionEverything),
}

func noteIDProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
		"minimum":     1,
	}
}

// noteProperties describes the editable note fields shared by create_note and update_note
func noteProperties() map[string]interface{} {
	return map[string]interface{}{
		"title": map[string]interface{}{
			"type":        []string{"string", "null"},
			"description": "Note title",
		},
		"body": map[string]interface{}{
			"type":        []string{"string", "null"},
			"description": "Note body",
		},
		"is_pinned": map[string]interface{}{
			"type":        "boolean",
			"description": "Pin the note to the top of the list",
		},
		"is_archived": map[string]interface{}{
			"type":        "boolean",
			"description": "Move the note to the archive",
		},
		"is_favorite": map[string]interface{}{
			"type":        "boolean",
			"description": "Mark the note as a favorite",
		},
		"is_check_list": map[string]interface{}{
			"type":        "boolean",
			"description": "Render the note as a checklist",
		},
		"color": map[string]interface{}{
			"type":        "integer",
			"description": "Color code (0 = default)",
			"minimum":     int(types.NoteColorDefault),
			"maximum":     int(types.NoteColorBurntOrange),
		},
		"reminder_time": map[string]interface{}{
			"type":        []string{"string", "null"},
			"description": "Reminder time in RFC 3339 format, null clears it",
		},
		"attachments": map[string]interface{}{
			"type":        "array",
			"description": "Attachment URIs",
			"items":       map[string]interface{}{"type": "string"},
		},
		"checklist": map[string]interface{}{
			"type":        "array",
			"description": "Checklist items, replacing any existing items",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text":       map[string]interface{}{"type": "string"},
					"is_checked": map[string]interface{}{"type": "boolean", "default": false},
				},
			},
		},
		"tags": map[string]interface{}{
			"type":        "array",
			"description": "Tags to attach, replacing existing associations. Tags without tag_id are created.",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"tag_id": map[string]interface{}{"type": "integer"},
					"name":   map[string]interface{}{"type": "string"},
					"color":  map[string]interface{}{"type": "integer", "minimum": int(types.TagColorRed), "maximum": int(types.TagColorBrown)},
				},
			},
		},
	}
}

// createNoteTool returns the tool definition for create_note
func createNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "create_note",
		Description: "Create a note together with its checklist items and tags in one atomic write",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: noteProperties(),
		},
	}
}

// updateNoteTool returns the tool definition for update_note
func updateNoteTool() mcp.Tool {
	props := noteProperties()
	props["note_id"] = noteIDProperty("Note to update")
	props["is_deleted"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Move the note to the trash, or restore it with false",
	}
	return mcp.Tool{
		Name:        "update_note",
		Description: "Update a note. Omitted fields keep their value; checklist and tags, when given, replace the existing ones.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   []string{"note_id"},
		},
	}
}

// getNoteTool returns the tool definition for get_note
func getNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_note",
		Description: "Get a note with its checklist items and tags",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"note_id": noteIDProperty("Note identity"),
			},
			Required: []string{"note_id"},
		},
	}
}

// listNotesTool returns the tool definition for list_notes
func listNotesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_notes",
		Description: "List notes with their checklist items and tags, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"section": map[string]interface{}{
					"type":        "string",
					"description": "Which notes to list",
					"enum":        sections,
					"default":     string(types.SectionAll),
				},
				"tag_id": map[string]interface{}{
					"type":        "integer",
					"description": "Only list notes carrying this tag",
				},
			},
		},
	}
}

// deleteNoteTool returns the tool definition for delete_note
func deleteNoteTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_note",
		Description: "Move a note to the trash, or delete it permanently with its checklist and tag links",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"note_id": noteIDProperty("Note to delete"),
				"permanent": map[string]interface{}{
					"type":        "boolean",
					"description": "Delete the note instead of moving it to the trash",
					"default":     false,
				},
			},
			Required: []string{"note_id"},
		},
	}
}

// emptyTrashTool returns the tool definition for empty_trash
func emptyTrashTool() mcp.Tool {
	return mcp.Tool{
		Name:        "empty_trash",
		Description: "Permanently delete every note in the trash",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// listTagsTool returns the tool definition for list_tags
func listTagsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_tags",
		Description: "List all tags",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// upsertTagTool returns the tool definition for upsert_tag
func upsertTagTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upsert_tag",
		Description: "Create a tag, or replace the tag with the given tag_id",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tag_id": map[string]interface{}{
					"type":        "integer",
					"description": "Tag identity to replace; omit to create a new tag",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Tag name",
				},
				"color": map[string]interface{}{
					"type":        "integer",
					"description": "Tag color code",
					"minimum":     int(types.TagColorRed),
					"maximum":     int(types.TagColorBrown),
				},
			},
		},
	}
}

// deleteTagTool returns the tool definition for delete_tag
func deleteTagTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_tag",
		Description: "Delete a tag and detach it from every note",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tag_id": map[string]interface{}{
					"type":        "integer",
					"description": "Tag to delete",
					"minimum":     1,
				},
			},
			Required: []string{"tag_id"},
		},
	}
}

// getChecklistTool returns the tool definition for get_checklist
func getChecklistTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_checklist",
		Description: "Get the checklist items of a note",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"note_id": noteIDProperty("Note identity"),
			},
			Required: []string{"note_id"},
		},
	}
}

// exportNotesTool returns the tool definition for export_notes
func exportNotesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "export_notes",
		Description: "Write every tag and note to a JSON backup file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the backup file to write",
				},
			},
			Required: []string{"path"},
		},
	}
}

// importNotesTool returns the tool definition for import_notes
func importNotesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "import_notes",
		Description: "Restore tags and notes from a JSON backup file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of the backup file to read",
				},
				"keep_ids": map[string]interface{}{
					"type":        "boolean",
					"description": "Restore notes under their exported identities, replacing existing notes",
					"default":     false,
				},
				"workers": map[string]interface{}{
					"type":        "integer",
					"description": "Number of concurrent note writers (default: server worker count)",
					"minimum":     1,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report store statistics and health",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
