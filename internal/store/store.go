package store

import (
	"context"
	"errors"
	"time"

	"github.com/nhle/mcp-todo/internal/model"
)

// ErrInconsistent reports a broken internal invariant, such as a row that
// cannot be read back right after its transaction committed.
var ErrInconsistent = errors.New("store: inconsistent state")

// SortField names a column search results can be ordered by.
type SortField string

const (
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortOrder is the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ItemFilter selects items for SearchItems. Zero-valued fields do not
// filter; every set field must match.
type ItemFilter struct {
	ListID     string
	Query      string // substring of title or description
	Assignee   string
	Tags       []string // item must carry every one of these tags
	Statuses   []model.Status
	Priorities []model.Priority
	DueAfter   *time.Time // inclusive
	DueBefore  *time.Time // inclusive
}

// ItemSort orders search results. The zero value sorts by creation time,
// newest first.
type ItemSort struct {
	Field SortField
	Order SortOrder
}

// Page bounds a result set. Offset only applies together with a Limit.
type Page struct {
	Limit  int
	Offset int
}

// ListStore persists todo lists. Lookups of unknown ids return nil
// without an error.
type ListStore interface {
	CreateList(ctx context.Context, name, description string) (*model.TodoList, error)
	GetListByID(ctx context.Context, id string) (*model.TodoList, error)
	GetLists(ctx context.Context) ([]model.TodoList, error)
	UpdateList(ctx context.Context, id string, patch model.ListPatch) (*model.TodoList, error)
	DeleteList(ctx context.Context, id string) (bool, error)
}

// ItemStore persists todo items together with their tags and recurrence.
// Lookups of unknown ids return nil without an error.
type ItemStore interface {
	CreateItem(ctx context.Context, item model.NewTodoItem) (*model.TodoItem, error)
	GetItemByID(ctx context.Context, id string) (*model.TodoItem, error)
	UpdateItem(ctx context.Context, id string, patch model.ItemPatch) (*model.TodoItem, error)
	DeleteItem(ctx context.Context, id string) (bool, error)
	MarkItemDone(ctx context.Context, id string) (*model.TodoItem, error)
	SearchItems(ctx context.Context, filter ItemFilter, sort ItemSort, page Page) ([]model.TodoItem, error)
}

// Store is the full persistence interface of the todo server.
type Store interface {
	ListStore
	ItemStore

	GetTags(ctx context.Context) ([]model.Tag, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
