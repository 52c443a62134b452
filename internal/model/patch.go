package model

import (
	"encoding/json"
	"time"
)

// Field is one optional member of a partial update. Presence, not the
// value, decides whether the column is written: a Field set to "" or nil
// still updates, while the zero Field leaves the column untouched.
type Field[T any] struct {
	Value T
	Set   bool
}

// Some returns a Field that is present with value v.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Get returns the value and whether it was present.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// UnmarshalJSON marks the field present whenever its key appears in the
// input, including an explicit null.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON encodes the wrapped value.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ListPatch is a partial update of a TodoList.
type ListPatch struct {
	Name        Field[string] `json:"name"`
	Description Field[string] `json:"description"`
}

// Empty reports whether no field is present.
func (p ListPatch) Empty() bool {
	return !p.Name.Set && !p.Description.Set
}

// ItemPatch is a partial update of a TodoItem. Tags replace the whole set
// when present. Recurrence set to nil removes the rule.
type ItemPatch struct {
	Title        Field[string]      `json:"title"`
	Description  Field[string]      `json:"description"`
	Assignee     Field[string]      `json:"assignee"`
	Priority     Field[Priority]    `json:"priority"`
	Status       Field[Status]      `json:"status"`
	Tags         Field[[]string]    `json:"tags"`
	DueDate      Field[*time.Time]  `json:"due_date"`
	SnoozedUntil Field[*time.Time]  `json:"snoozed_until"`
	CompletedAt  Field[*time.Time]  `json:"completed_at"`
	Recurrence   Field[*Recurrence] `json:"recurrence"`
}
