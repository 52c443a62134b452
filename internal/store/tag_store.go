package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/nhle/mcp-todo/internal/model"
)

// uniqueTags returns names sorted and without duplicates.
func uniqueTags(names []string) []string {
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}

// decodeTags reads the json_group_array aggregation of tag names. Names are
// returned sorted; NULL or an empty array yields an empty slice.
func decodeTags(aggregated string) ([]string, error) {
	tags := []string{}
	if aggregated == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(aggregated), &tags); err != nil {
		return nil, fmt.Errorf("decoding tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	slices.Sort(tags)
	return tags, nil
}

// addItemTags links each tag name to the item, creating dictionary entries
// for names seen for the first time.
func addItemTags(ctx context.Context, tx Conn, itemID string, names []string) error {
	for _, name := range uniqueTags(names) {
		if _, err := tx.Exec(ctx,
			"INSERT OR IGNORE INTO tags (name) VALUES (?)", name); err != nil {
			return fmt.Errorf("adding tag %q: %w", name, err)
		}

		var tagID int64
		found, err := tx.Get(ctx, &tagID, "SELECT id FROM tags WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("looking up tag %q: %w", name, err)
		}
		if !found {
			return fmt.Errorf("%w: tag %q missing after insert", ErrInconsistent, name)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO todo_tags (item_id, tag_id) VALUES (?, ?)",
			itemID, tagID); err != nil {
			return fmt.Errorf("setting tag %q on item %s: %w", name, itemID, err)
		}
	}
	return nil
}

// replaceItemTags drops every tag link of the item and inserts names.
func replaceItemTags(ctx context.Context, tx Conn, itemID string, names []string) error {
	if _, err := tx.Exec(ctx,
		"DELETE FROM todo_tags WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("clearing tags of item %s: %w", itemID, err)
	}
	return addItemTags(ctx, tx, itemID, names)
}

// GetTags retrieves the tag dictionary ordered by name, with the number of
// items carrying each tag.
func (s *SQLiteStore) GetTags(ctx context.Context) ([]model.Tag, error) {
	tags := make([]model.Tag, 0)
	err := s.Select(ctx, &tags, `
		SELECT t.id, t.name, COUNT(tt.item_id) AS item_count
		FROM tags t
		LEFT JOIN todo_tags tt ON tt.tag_id = t.id
		GROUP BY t.id
		ORDER BY t.name`)
	if err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}
	return tags, nil
}
