package storage

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/thoughtpad/thoughtpad-mcp/pkg/types"
)

// DefaultMaxBindParameters is SQLite's historical SQLITE_MAX_VARIABLE_NUMBER
const DefaultMaxBindParameters = 999

// relation describes how to fetch the children of a set of parent keys.
// query holds one %s verb for the IN placeholder list; scan reads the parent
// key and the decoded child from the current row.
type relation[K cmp.Ordered, V any] struct {
	name  string
	query string
	scan  func(rows *sql.Rows) (K, V, error)
}

// loadRelation appends the children of every key in acc to acc[key]. Keys with
// no children keep whatever acc already holds for them, so callers pre-seed acc
// with an empty slice per parent. Key sets larger than limit are split into
// sorted chunks of at most limit keys.
func loadRelation[K cmp.Ordered, V any](ctx context.Context, q querier, rel relation[K, V], acc map[K][]V, limit int) error {
	if len(acc) == 0 {
		return nil
	}
	keys := make([]K, 0, len(acc))
	for k := range acc {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return loadRelationKeys(ctx, q, rel, keys, acc, limit)
}

func loadRelationKeys[K cmp.Ordered, V any](ctx context.Context, q querier, rel relation[K, V], keys []K, acc map[K][]V, limit int) error {
	if len(keys) == 0 {
		return nil
	}
	if limit < 1 {
		limit = DefaultMaxBindParameters
	}
	if len(keys) > limit {
		for start := 0; start < len(keys); start += limit {
			end := min(start+limit, len(keys))
			if err := loadRelationKeys(ctx, q, rel, keys[start:end], acc, limit); err != nil {
				return err
			}
		}
		return nil
	}

	placeholders := make([]string, len(keys))
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = k
	}

	rows, err := q.QueryContext(ctx, fmt.Sprintf(rel.query, strings.Join(placeholders, ",")), args...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", rel.name, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		key, child, err := rel.scan(rows)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", rel.name, err)
		}
		acc[key] = append(acc[key], child)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load %s: %w", rel.name, err)
	}
	return nil
}

var checklistItemsByNote = relation[int64, types.ChecklistItem]{
	name: "checklist items",
	query: `SELECT note_id, ` + checklistColumns + `
		FROM checklist_items
		WHERE note_id IN (%s)
		ORDER BY note_id, checklist_item_id`,
	scan: func(rows *sql.Rows) (int64, types.ChecklistItem, error) {
		var key int64
		var row checklistRow
		if err := rows.Scan(append([]any{&key}, row.dest()...)...); err != nil {
			return 0, types.ChecklistItem{}, err
		}
		return key, decodeChecklistItem(row), nil
	},
}

// tagsByNote reads the cross-ref's note_id as the key, not a column of tags
var tagsByNote = relation[int64, types.Tag]{
	name: "tags",
	query: `SELECT x.note_id, t.tag_id, t.name, t.color
		FROM note_tag_cross_ref x
		JOIN tags t ON t.tag_id = x.tag_id
		WHERE x.note_id IN (%s)
		ORDER BY x.note_id, t.tag_id`,
	scan: func(rows *sql.Rows) (int64, types.Tag, error) {
		var key int64
		var row tagRow
		if err := rows.Scan(append([]any{&key}, row.dest()...)...); err != nil {
			return 0, types.Tag{}, err
		}
		return key, decodeTag(row), nil
	},
}
