package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nhle/mcp-todo/internal/model"
)

const listColumns = "id, name, description, created_at, updated_at"

type listRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CreatedAt   timestamp      `db:"created_at"`
	UpdatedAt   timestamp      `db:"updated_at"`
}

func (r listRow) toModel() model.TodoList {
	return model.TodoList{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		CreatedAt:   r.CreatedAt.Time,
		UpdatedAt:   r.UpdatedAt.Time,
	}
}

// nullString stores "" as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// CreateList inserts a new list and returns it as stored.
func (s *SQLiteStore) CreateList(
	ctx context.Context,
	name, description string,
) (*model.TodoList, error) {
	id := uuid.New().String()
	now := timestamp{s.now().UTC()}

	_, err := s.Exec(ctx, `
		INSERT INTO todo_lists (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, name, nullString(description), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}

	list, err := s.GetListByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, fmt.Errorf("%w: list %s missing after create", ErrInconsistent, id)
	}
	return list, nil
}

// GetListByID retrieves a single list, or nil if it does not exist.
func (s *SQLiteStore) GetListByID(ctx context.Context, id string) (*model.TodoList, error) {
	var row listRow
	found, err := s.Get(ctx, &row,
		"SELECT "+listColumns+" FROM todo_lists WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting list %s: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	list := row.toModel()
	return &list, nil
}

// GetLists retrieves all lists, newest first.
func (s *SQLiteStore) GetLists(ctx context.Context) ([]model.TodoList, error) {
	var rows []listRow
	err := s.Select(ctx, &rows,
		"SELECT "+listColumns+" FROM todo_lists ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("querying lists: %w", err)
	}

	lists := make([]model.TodoList, 0, len(rows))
	for _, r := range rows {
		lists = append(lists, r.toModel())
	}
	return lists, nil
}

// UpdateList applies the fields present in patch. It returns nil if the
// list does not exist. updated_at is left as it was at creation.
func (s *SQLiteStore) UpdateList(
	ctx context.Context,
	id string,
	patch model.ListPatch,
) (*model.TodoList, error) {
	existing, err := s.GetListByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}
	if patch.Empty() {
		return existing, nil
	}

	var sets []string
	var args []any
	if name, ok := patch.Name.Get(); ok {
		sets = append(sets, "name = ?")
		args = append(args, name)
	}
	if desc, ok := patch.Description.Get(); ok {
		sets = append(sets, "description = ?")
		args = append(args, nullString(desc))
	}
	args = append(args, id)

	_, err = s.Exec(ctx,
		"UPDATE todo_lists SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("updating list %s: %w", id, err)
	}

	return s.GetListByID(ctx, id)
}

// DeleteList removes a list and, through the foreign key cascade, its
// items. It reports true whenever the statement succeeds, whether or not
// the list existed.
func (s *SQLiteStore) DeleteList(ctx context.Context, id string) (bool, error) {
	if _, err := s.Exec(ctx, "DELETE FROM todo_lists WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("deleting list %s: %w", id, err)
	}
	return true, nil
}
