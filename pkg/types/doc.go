// Package types provides shared type definitions for the ThoughtPad notes store.
//
// This package defines the domain records persisted by the storage layer and
// exchanged over the MCP and backup boundaries: notes, tags, checklist items and
// the note/tag association.
//
// # Core Types
//
// Note is the aggregate root. Its checklist items and tags are loaded together
// as a NoteWithDetails:
//
//	details := &types.NoteWithDetails{
//	    Note:           types.Note{ID: 7, Title: types.String("Groceries")},
//	    ChecklistItems: []types.ChecklistItem{{Text: types.String("buy milk")}},
//	    Tags:           []types.Tag{{ID: 3, Name: types.String("home")}},
//	}
//
// # Identity
//
// Inserts take an explicit Identity instead of overloading a zero primary key:
//
//	types.NewIdentity()     // assign a fresh identity
//	types.WithIdentity(42)  // insert, or replace row 42 in place
//
// IdentityOf converts the zero-means-generate convention used by JSON documents
// and tool arguments into an Identity.
//
// # Errors
//
// Storage failures are classified with the sentinels in errors.go and can be
// tested with errors.Is:
//
//	if errors.Is(err, types.ErrNotFound) { ... }
package types
