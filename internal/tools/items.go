package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/nhle/mcp-todo/internal/model"
	"github.com/nhle/mcp-todo/internal/store"
	"github.com/nhle/mcp-todo/internal/validator"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// ItemResponse carries a single item. Success is false when the item does
// not exist.
type ItemResponse struct {
	Success bool            `json:"success"`
	Item    *model.TodoItem `json:"item,omitempty"`
}

// ItemsResponse carries a page of search results.
type ItemsResponse struct {
	Success bool             `json:"success"`
	Items   []model.TodoItem `json:"items"`
	Count   int              `json:"count"`
}

// TagsResponse carries the tag dictionary.
type TagsResponse struct {
	Success bool        `json:"success"`
	Tags    []model.Tag `json:"tags"`
	Count   int         `json:"count"`
}

type recurrenceInput struct {
	Type       model.RecurrenceType `json:"type" validate:"required,recurrencetype"`
	Weekdays   []int                `json:"weekdays" validate:"omitempty,dive,min=0,max=6"`
	DayOfMonth *int                 `json:"day_of_month" validate:"omitempty,min=1,max=31"`
}

// rule converts the input into a stored rule whose next occurrence is due.
func (in *recurrenceInput) rule(due *time.Time) *model.Recurrence {
	if in == nil {
		return nil
	}
	rule := &model.Recurrence{
		Type:     in.Type,
		Weekdays: in.Weekdays,
		NextDue:  due,
	}
	if in.DayOfMonth != nil {
		rule.DayOfMonth = *in.DayOfMonth
	}
	return rule
}

type createItemInput struct {
	ListID      string           `json:"list_id" validate:"required" desc:"ID of the parent list"`
	Title       string           `json:"title" validate:"required" desc:"Title of the todo"`
	Description string           `json:"description" desc:"Description"`
	Assignee    string           `json:"assignee" desc:"Assignee name"`
	Priority    model.Priority   `json:"priority" validate:"priority" desc:"Priority level: none, low, medium or high"`
	Status      model.Status     `json:"status" validate:"status" desc:"Initial status, pending by default"`
	Tags        []string         `json:"tags" validate:"dive,required" desc:"Tags for the todo"`
	DueDate     string           `json:"due_date" validate:"omitempty,isodate" desc:"Due date in ISO format"`
	Recurrence  *recurrenceInput `json:"recurrence" desc:"Recurrence settings"`
}

func (in *createItemInput) applyDefaults() {
	if in.Priority == "" {
		in.Priority = model.PriorityNone
	}
	if in.Status == "" {
		in.Status = model.StatusPending
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
}

type searchItemsInput struct {
	Query     string           `json:"query" desc:"Search query for title/description"`
	ListID    string           `json:"list_id" desc:"Filter by list ID"`
	Assignee  string           `json:"assignee" desc:"Filter by assignee"`
	Tags      []string         `json:"tags" desc:"Filter by tags; items must carry every tag"`
	Status    []model.Status   `json:"status" validate:"omitempty,dive,status" desc:"Filter by status"`
	Priority  []model.Priority `json:"priority" validate:"omitempty,dive,priority" desc:"Filter by priority"`
	DueBefore string           `json:"due_before" validate:"omitempty,isodate" desc:"Filter by due date before (ISO format)"`
	DueAfter  string           `json:"due_after" validate:"omitempty,isodate" desc:"Filter by due date after (ISO format)"`
	SortField store.SortField  `json:"sort_field" validate:"oneof=due_date priority created_at updated_at" desc:"Sort field"`
	SortOrder store.SortOrder  `json:"sort_order" validate:"oneof=asc desc" desc:"Sort order"`
	Limit     *int             `json:"limit" validate:"min=1,max=100" desc:"Max items to return"`
	Offset    *int             `json:"offset" validate:"min=0" desc:"Pagination offset"`
}

func (in *searchItemsInput) applyDefaults() {
	if in.SortField == "" {
		in.SortField = store.SortByCreatedAt
	}
	if in.SortOrder == "" {
		in.SortOrder = store.SortDesc
	}
	if in.Limit == nil {
		limit := defaultLimit
		in.Limit = &limit
	}
	if in.Offset == nil {
		offset := 0
		in.Offset = &offset
	}
}

type updateItemInput struct {
	ID           string                        `json:"id" validate:"required" desc:"ID of the todo item"`
	Title        *string                       `json:"title" validate:"omitnil,min=1" desc:"New title"`
	Description  *string                       `json:"description" desc:"New description"`
	Assignee     *string                       `json:"assignee" desc:"New assignee"`
	Priority     *model.Priority               `json:"priority" validate:"omitnil,priority" desc:"New priority"`
	Status       *model.Status                 `json:"status" validate:"omitnil,status" desc:"New status"`
	Tags         []string                      `json:"tags" validate:"omitempty,dive,required" desc:"New tags, replacing the current ones"`
	DueDate      *string                       `json:"due_date" validate:"omitempty,isodate" desc:"New due date (ISO format)"`
	SnoozedUntil *string                       `json:"snoozed_until" validate:"omitempty,isodate" desc:"Snooze until (ISO format)"`
	Recurrence   model.Field[*recurrenceInput] `json:"recurrence" validate:"-" desc:"New recurrence (null to remove)"`
}

// parseDate parses an already validated date argument.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := model.ParseDate(*s)
	if err != nil {
		return nil, validator.Invalid(field, "isodate", fmt.Sprintf("%s must be an ISO 8601 date", field))
	}
	return &t, nil
}

func (r *Registry) registerItemTools() {
	register(r, "createTodoItem", "Create a new todo item",
		func(ctx context.Context, in createItemInput) (any, error) {
			list, err := r.backend.GetListByID(ctx, in.ListID)
			if err != nil {
				return nil, err
			}
			if list == nil {
				return nil, validator.Invalid("list_id", "exists",
					fmt.Sprintf("list_id %q does not reference an existing list", in.ListID))
			}

			due, err := parseDate("due_date", &in.DueDate)
			if err != nil {
				return nil, err
			}

			item, err := r.backend.CreateItem(ctx, model.NewTodoItem{
				ListID:      in.ListID,
				Title:       in.Title,
				Description: in.Description,
				Assignee:    in.Assignee,
				Priority:    in.Priority,
				Status:      in.Status,
				Tags:        in.Tags,
				DueDate:     due,
				Recurrence:  in.Recurrence.rule(due),
			})
			if err != nil {
				return nil, err
			}
			return ItemResponse{Success: true, Item: item}, nil
		})

	register(r, "getTodoItem", "Get a todo item by ID",
		func(ctx context.Context, in idInput) (any, error) {
			item, err := r.backend.GetItemByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return ItemResponse{Success: item != nil, Item: item}, nil
		})

	register(r, "searchTodoItems", "Search and filter todo items",
		func(ctx context.Context, in searchItemsInput) (any, error) {
			before, err := parseDate("due_before", &in.DueBefore)
			if err != nil {
				return nil, err
			}
			after, err := parseDate("due_after", &in.DueAfter)
			if err != nil {
				return nil, err
			}

			items, err := r.backend.SearchItems(ctx,
				store.ItemFilter{
					ListID:     in.ListID,
					Query:      in.Query,
					Assignee:   in.Assignee,
					Tags:       in.Tags,
					Statuses:   in.Status,
					Priorities: in.Priority,
					DueAfter:   after,
					DueBefore:  before,
				},
				store.ItemSort{Field: in.SortField, Order: in.SortOrder},
				store.Page{Limit: min(*in.Limit, maxLimit), Offset: *in.Offset},
			)
			if err != nil {
				return nil, err
			}
			return ItemsResponse{Success: true, Items: items, Count: len(items)}, nil
		})

	register(r, "updateTodoItem", "Update a todo item",
		func(ctx context.Context, in updateItemInput) (any, error) {
			patch, err := r.itemPatch(in)
			if err != nil {
				return nil, err
			}
			item, err := r.backend.UpdateItem(ctx, in.ID, patch)
			if err != nil {
				return nil, err
			}
			return ItemResponse{Success: item != nil, Item: item}, nil
		})

	register(r, "markTodoDone", "Mark a todo item as done/completed",
		func(ctx context.Context, in idInput) (any, error) {
			item, err := r.backend.MarkItemDone(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return ItemResponse{Success: item != nil, Item: item}, nil
		})

	register(r, "deleteTodoItem", "Delete a todo item",
		func(ctx context.Context, in idInput) (any, error) {
			ok, err := r.backend.DeleteItem(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return DeleteResponse{Success: ok}, nil
		})

	register(r, "listTags", "List every known tag with the number of items carrying it",
		func(ctx context.Context, _ noInput) (any, error) {
			tags, err := r.backend.GetTags(ctx)
			if err != nil {
				return nil, err
			}
			return TagsResponse{Success: true, Tags: tags, Count: len(tags)}, nil
		})
}

// itemPatch turns the present update arguments into a patch. Absent and
// null scalar arguments leave the column unchanged; a null recurrence
// removes the rule.
func (r *Registry) itemPatch(in updateItemInput) (model.ItemPatch, error) {
	var patch model.ItemPatch

	if in.Title != nil {
		patch.Title = model.Some(*in.Title)
	}
	if in.Description != nil {
		patch.Description = model.Some(*in.Description)
	}
	if in.Assignee != nil {
		patch.Assignee = model.Some(*in.Assignee)
	}
	if in.Priority != nil {
		patch.Priority = model.Some(*in.Priority)
	}
	if in.Status != nil {
		patch.Status = model.Some(*in.Status)
	}
	if in.Tags != nil {
		patch.Tags = model.Some(in.Tags)
	}

	due, err := parseDate("due_date", in.DueDate)
	if err != nil {
		return patch, err
	}
	if due != nil {
		patch.DueDate = model.Some(due)
	}

	snooze, err := parseDate("snoozed_until", in.SnoozedUntil)
	if err != nil {
		return patch, err
	}
	if snooze != nil {
		patch.SnoozedUntil = model.Some(snooze)
	}

	if rec, ok := in.Recurrence.Get(); ok {
		if rec != nil {
			wrapped := struct {
				Recurrence *recurrenceInput `json:"recurrence"`
			}{rec}
			if err := r.validate.Validate(wrapped); err != nil {
				return patch, err
			}
		}
		patch.Recurrence = model.Some(rec.rule(due))
	}

	return patch, nil
}
