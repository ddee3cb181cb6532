// Package mcp implements the Model Context Protocol (MCP) server for thoughtpad.
//
// The server exposes the notes store to MCP clients as tools:
//   - create_note, update_note, get_note, list_notes, delete_note, empty_trash
//   - list_tags, upsert_tag, delete_tag
//   - get_checklist
//   - export_notes, import_notes, get_status
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol frames only; logs go to stderr or the configured log file.
//
// # Basic Usage
//
//	thoughtpad serve --db ~/.thoughtpad/thoughtpad.db
//
// # Tool: create_note
//
//	Request:
//	{
//	  "name": "create_note",
//	  "arguments": {
//	    "title": "Groceries",
//	    "is_check_list": true,
//	    "checklist": [{"text": "milk"}, {"text": "eggs", "is_checked": true}],
//	    "tags": [{"tag_id": 3}, {"name": "errands", "color": 2}],
//	    "attachments": ["content://media/42"]
//	  }
//	}
//
// The note, its checklist items and its tag links are written in one
// transaction. Tags without a tag_id are created; a tag_id that does not exist
// yet is created under that identity. The response is the stored note with its
// checklist items and tags.
//
// # Tool: update_note
//
// Fields that are omitted keep their stored value. When checklist or tags are
// given they replace the note's existing items or tag links. Setting
// is_deleted moves the note to the trash or restores it.
//
// # Tool: list_notes
//
// Lists notes newest first. section is one of all (default), pinned, archived,
// trash, reminders or everything; tag_id narrows the list to one tag.
//
// # Timestamps
//
// created_at and updated_at are stamped by this package at millisecond
// precision; the store persists whatever it is given.
//
// # Ordering
//
// Every tool call runs on the shared worker pool. Calls from the same client
// session run one after another in arrival order; calls from different
// sessions run concurrently.
//
// # Error Handling
//
// Store error classes map onto MCP error codes:
//
//	-32602  invalid parameters
//	-32603  internal error
//	-32001  not found
//	-32002  constraint violation
//	-32003  store unavailable
//	-32004  stored data could not be decoded
//	-32005  import already in progress
package mcp
