package model

import "time"

// Priority is the importance level of a todo item.
type Priority string

// Priority constants.
const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest rank.
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank returns the semantic position of p (none=0 ... high=3), or -1 if p
// is unknown.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return -1
}

// Status is the lifecycle state of a todo item.
type Status string

// Todo status constants.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every known status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// TodoList is the top-level grouping of todo items.
type TodoList struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoItem is a single task inside a list, reconstituted from the item row,
// its tag links and its recurrence rule.
type TodoItem struct {
	ID           string      `json:"id"`
	ListID       string      `json:"list_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Assignee     string      `json:"assignee,omitempty"`
	Priority     Priority    `json:"priority"`
	Status       Status      `json:"status"`
	Tags         []string    `json:"tags"`
	DueDate      *time.Time  `json:"due_date,omitempty"`
	SnoozedUntil *time.Time  `json:"snoozed_until,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// HasTag reports whether the item carries the tag name exactly.
func (t TodoItem) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// NewTodoItem holds the caller-supplied fields of an item to create.
type NewTodoItem struct {
	ListID       string
	Title        string
	Description  string
	Assignee     string
	Priority     Priority
	Status       Status
	Tags         []string
	DueDate      *time.Time
	SnoozedUntil *time.Time
	CompletedAt  *time.Time
	Recurrence   *Recurrence
}
