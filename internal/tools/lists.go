package tools

import (
	"context"

	"github.com/nhle/mcp-todo/internal/model"
)

// ListResponse carries a single list. Success is false when the list does
// not exist.
type ListResponse struct {
	Success bool            `json:"success"`
	List    *model.TodoList `json:"list,omitempty"`
}

// ListsResponse carries every list.
type ListsResponse struct {
	Success bool             `json:"success"`
	Lists   []model.TodoList `json:"lists"`
}

// DeleteResponse reports the outcome of a delete.
type DeleteResponse struct {
	Success bool `json:"success"`
}

type createListInput struct {
	Name        string `json:"name" validate:"required" desc:"Name of the todo list"`
	Description string `json:"description" desc:"Description of the todo list"`
}

type idInput struct {
	ID string `json:"id" validate:"required" desc:"ID of the record"`
}

type noInput struct{}

type updateListInput struct {
	ID          string  `json:"id" validate:"required" desc:"ID of the todo list"`
	Name        *string `json:"name" validate:"omitnil,min=1" desc:"New name"`
	Description *string `json:"description" desc:"New description"`
}

func (r *Registry) registerListTools() {
	register(r, "createTodoList", "Create a new todo list",
		func(ctx context.Context, in createListInput) (any, error) {
			list, err := r.backend.CreateList(ctx, in.Name, in.Description)
			if err != nil {
				return nil, err
			}
			return ListResponse{Success: true, List: list}, nil
		})

	register(r, "getTodoList", "Get a todo list by ID",
		func(ctx context.Context, in idInput) (any, error) {
			list, err := r.backend.GetListByID(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return ListResponse{Success: list != nil, List: list}, nil
		})

	register(r, "getAllTodoLists", "Get all todo lists",
		func(ctx context.Context, _ noInput) (any, error) {
			lists, err := r.backend.GetLists(ctx)
			if err != nil {
				return nil, err
			}
			return ListsResponse{Success: true, Lists: lists}, nil
		})

	register(r, "updateTodoList", "Update a todo list",
		func(ctx context.Context, in updateListInput) (any, error) {
			var patch model.ListPatch
			if in.Name != nil {
				patch.Name = model.Some(*in.Name)
			}
			if in.Description != nil {
				patch.Description = model.Some(*in.Description)
			}
			list, err := r.backend.UpdateList(ctx, in.ID, patch)
			if err != nil {
				return nil, err
			}
			return ListResponse{Success: list != nil, List: list}, nil
		})

	register(r, "deleteTodoList", "Delete a todo list and all of its items",
		func(ctx context.Context, in idInput) (any, error) {
			ok, err := r.backend.DeleteList(ctx, in.ID)
			if err != nil {
				return nil, err
			}
			return DeleteResponse{Success: ok}, nil
		})
}
