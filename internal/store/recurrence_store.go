package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nhle/mcp-todo/internal/model"
)

// recurrenceColumns are the nullable recurrence fields of an item read.
// They are all NULL when the item has no rule.
type recurrenceColumns struct {
	Type       sql.NullString `db:"recurrence_type"`
	Weekdays   sql.NullString `db:"weekdays"`
	DayOfMonth sql.NullInt64  `db:"day_of_month"`
	NextDue    nullTimestamp  `db:"next_due"`
}

func (c recurrenceColumns) toModel() (*model.Recurrence, error) {
	if !c.Type.Valid {
		return nil, nil
	}
	rec := &model.Recurrence{
		Type:       model.RecurrenceType(c.Type.String),
		DayOfMonth: int(c.DayOfMonth.Int64),
		NextDue:    c.NextDue.Ptr(),
	}
	if c.Weekdays.Valid && c.Weekdays.String != "" {
		if err := json.Unmarshal([]byte(c.Weekdays.String), &rec.Weekdays); err != nil {
			return nil, fmt.Errorf("unmarshaling weekdays: %w", err)
		}
	}
	return rec, nil
}

// insertRecurrence stores rule as the item's recurrence. The item must not
// already have one.
func insertRecurrence(ctx context.Context, tx Conn, itemID string, rule model.Recurrence) error {
	var weekdays sql.NullString
	if days := rule.NormalizedWeekdays(); len(days) > 0 {
		data, err := json.Marshal(days)
		if err != nil {
			return fmt.Errorf("marshaling weekdays: %w", err)
		}
		weekdays = sql.NullString{String: string(data), Valid: true}
	}

	dayOfMonth := sql.NullInt64{Int64: int64(rule.DayOfMonth), Valid: rule.DayOfMonth != 0}

	_, err := tx.Exec(ctx, `
		INSERT INTO recurrences (item_id, type, weekdays, day_of_month, next_due)
		VALUES (?, ?, ?, ?, ?)`,
		itemID, string(rule.Type), weekdays, dayOfMonth, toNullTimestamp(rule.NextDue),
	)
	if err != nil {
		return fmt.Errorf("setting recurrence on item %s: %w", itemID, err)
	}
	return nil
}

// replaceRecurrence deletes the item's rule and, if rule is not nil,
// inserts it in its place.
func replaceRecurrence(ctx context.Context, tx Conn, itemID string, rule *model.Recurrence) error {
	if _, err := tx.Exec(ctx,
		"DELETE FROM recurrences WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("clearing recurrence of item %s: %w", itemID, err)
	}
	if rule == nil {
		return nil
	}
	return insertRecurrence(ctx, tx, itemID, *rule)
}
