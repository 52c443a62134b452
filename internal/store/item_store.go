package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/mcp-todo/internal/model"
)

// itemRow is one row of itemSelect.
type itemRow struct {
	ID           string         `db:"id"`
	ListID       sql.NullString `db:"list_id"`
	Title        string         `db:"title"`
	Description  sql.NullString `db:"description"`
	Assignee     sql.NullString `db:"assignee"`
	Priority     string         `db:"priority"`
	Status       string         `db:"status"`
	DueDate      nullTimestamp  `db:"due_date"`
	SnoozedUntil nullTimestamp  `db:"snoozed_until"`
	CompletedAt  nullTimestamp  `db:"completed_at"`
	CreatedAt    timestamp      `db:"created_at"`
	UpdatedAt    timestamp      `db:"updated_at"`
	Tags         sql.NullString `db:"tags"`

	recurrenceColumns
}

func (r itemRow) toModel() (model.TodoItem, error) {
	rec, err := r.recurrenceColumns.toModel()
	if err != nil {
		return model.TodoItem{}, fmt.Errorf("reading recurrence of item %s: %w", r.ID, err)
	}
	tags, err := decodeTags(r.Tags.String)
	if err != nil {
		return model.TodoItem{}, fmt.Errorf("reading tags of item %s: %w", r.ID, err)
	}
	return model.TodoItem{
		ID:           r.ID,
		ListID:       r.ListID.String,
		Title:        r.Title,
		Description:  r.Description.String,
		Assignee:     r.Assignee.String,
		Priority:     model.Priority(r.Priority),
		Status:       model.Status(r.Status),
		Tags:         tags,
		DueDate:      r.DueDate.Ptr(),
		SnoozedUntil: r.SnoozedUntil.Ptr(),
		CompletedAt:  r.CompletedAt.Ptr(),
		Recurrence:   rec,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}, nil
}

// CreateItem inserts an item, its tag links and its recurrence rule in one
// transaction and returns the item as stored.
func (s *SQLiteStore) CreateItem(
	ctx context.Context,
	in model.NewTodoItem,
) (*model.TodoItem, error) {
	id := uuid.New().String()
	now := timestamp{s.now().UTC()}

	if in.Priority == "" {
		in.Priority = model.PriorityNone
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}

	err := s.InTx(ctx, func(tx Conn) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO todo_items (
				id, list_id, title, description, assignee, priority, status,
				due_date, snoozed_until, completed_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, nullString(in.ListID), in.Title,
			nullString(in.Description), nullString(in.Assignee),
			string(in.Priority), string(in.Status),
			toNullTimestamp(in.DueDate), toNullTimestamp(in.SnoozedUntil),
			toNullTimestamp(in.CompletedAt), now, now,
		)
		if err != nil {
			return fmt.Errorf("creating item: %w", err)
		}

		if err := addItemTags(ctx, tx, id, in.Tags); err != nil {
			return err
		}

		if in.Recurrence != nil {
			return insertRecurrence(ctx, tx, id, *in.Recurrence)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	item, err := s.GetItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %s missing after create", ErrInconsistent, id)
	}
	return item, nil
}

// GetItemByID retrieves a single item with its tags and recurrence, or nil
// if it does not exist.
func (s *SQLiteStore) GetItemByID(ctx context.Context, id string) (*model.TodoItem, error) {
	var row itemRow
	found, err := s.Get(ctx, &row, itemSelect+"\n\tWHERE ti.id = ?\n\tGROUP BY ti.id", id)
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}

	item, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies the fields present in patch in one transaction.
// Present tags replace the whole tag set; a present nil recurrence removes
// the rule. It returns nil if the item does not exist. updated_at is left
// as it was at creation.
func (s *SQLiteStore) UpdateItem(
	ctx context.Context,
	id string,
	patch model.ItemPatch,
) (*model.TodoItem, error) {
	existing, err := s.GetItemByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if v, ok := patch.Title.Get(); ok {
		set("title", v)
	}
	if v, ok := patch.Description.Get(); ok {
		set("description", nullString(v))
	}
	if v, ok := patch.Assignee.Get(); ok {
		set("assignee", nullString(v))
	}
	if v, ok := patch.Priority.Get(); ok {
		set("priority", string(v))
	}
	if v, ok := patch.Status.Get(); ok {
		set("status", string(v))
	}
	if v, ok := patch.DueDate.Get(); ok {
		set("due_date", toNullTimestamp(v))
	}
	if v, ok := patch.SnoozedUntil.Get(); ok {
		set("snoozed_until", toNullTimestamp(v))
	}
	if v, ok := patch.CompletedAt.Get(); ok {
		set("completed_at", toNullTimestamp(v))
	}

	err = s.InTx(ctx, func(tx Conn) error {
		if len(sets) > 0 {
			_, err := tx.Exec(ctx,
				"UPDATE todo_items SET "+strings.Join(sets, ", ")+" WHERE id = ?",
				append(args, id)...)
			if err != nil {
				return fmt.Errorf("updating item %s: %w", id, err)
			}
		}

		if tags, ok := patch.Tags.Get(); ok {
			if err := replaceItemTags(ctx, tx, id, tags); err != nil {
				return err
			}
		}

		if rule, ok := patch.Recurrence.Get(); ok {
			if err := replaceRecurrence(ctx, tx, id, rule); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetItemByID(ctx, id)
}

// DeleteItem removes an item; its tag links and recurrence go with it via
// the foreign key cascade. It reports true whenever the statement
// succeeds, whether or not the item existed.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) (bool, error) {
	if _, err := s.Exec(ctx, "DELETE FROM todo_items WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("deleting item %s: %w", id, err)
	}
	return true, nil
}

// MarkItemDone sets the item's status to completed and stamps its
// completion time. It returns nil if the item does not exist.
func (s *SQLiteStore) MarkItemDone(ctx context.Context, id string) (*model.TodoItem, error) {
	now := s.now().UTC()
	return s.UpdateItem(ctx, id, model.ItemPatch{
		Status:      model.Some(model.StatusCompleted),
		CompletedAt: model.Some(&now),
	})
}

// SearchItems retrieves items matching filter, ordered by sort and bounded
// by page.
func (s *SQLiteStore) SearchItems(
	ctx context.Context,
	filter ItemFilter,
	sort ItemSort,
	page Page,
) ([]model.TodoItem, error) {
	query, args := buildItemQuery(filter, sort, page)

	var rows []itemRow
	if err := s.Select(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}

	items := make([]model.TodoItem, 0, len(rows))
	for _, r := range rows {
		item, err := r.toModel()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
