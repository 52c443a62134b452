package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemPatch_UnmarshalTracksPresence(t *testing.T) {
	var p ItemPatch
	err := json.Unmarshal([]byte(`{
		"title": "new",
		"description": "",
		"recurrence": null,
		"tags": ["a"]
	}`), &p)
	require.NoError(t, err)

	title, ok := p.Title.Get()
	assert.True(t, ok)
	assert.Equal(t, "new", title)

	desc, ok := p.Description.Get()
	assert.True(t, ok, "empty string is present")
	assert.Empty(t, desc)

	rec, ok := p.Recurrence.Get()
	assert.True(t, ok, "explicit null is present")
	assert.Nil(t, rec)

	assert.Equal(t, []string{"a"}, p.Tags.Value)

	assert.False(t, p.Assignee.Set)
	assert.False(t, p.Status.Set)
	assert.False(t, p.DueDate.Set)
}

func TestItemPatch_UnmarshalRecurrenceValue(t *testing.T) {
	var p ItemPatch
	err := json.Unmarshal([]byte(`{"recurrence": {"type": "weekly", "weekdays": [1, 3]}}`), &p)
	require.NoError(t, err)

	rec, ok := p.Recurrence.Get()
	require.True(t, ok)
	require.NotNil(t, rec)
	assert.Equal(t, RecurWeekly, rec.Type)
	assert.Equal(t, []int{1, 3}, rec.Weekdays)
}

func TestListPatch_Empty(t *testing.T) {
	assert.True(t, ListPatch{}.Empty())
	assert.False(t, ListPatch{Description: Some("")}.Empty())
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityNone.Rank(), PriorityLow.Rank())
	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Equal(t, -1, Priority("urgent").Rank())
	assert.False(t, Priority("urgent").Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, Status("done").Valid())
}

func TestRecurrence_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Recurrence
		wantErr bool
	}{
		{"daily", Recurrence{Type: RecurDaily}, false},
		{"weekly", Recurrence{Type: RecurWeekly, Weekdays: []int{0, 6}}, false},
		{"monthly", Recurrence{Type: RecurMonthly, DayOfMonth: 31}, false},
		{"unknown type", Recurrence{Type: "yearly"}, true},
		{"weekday too large", Recurrence{Type: RecurWeekly, Weekdays: []int{7}}, true},
		{"day of month too large", Recurrence{Type: RecurMonthly, DayOfMonth: 32}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecurrence_NormalizedWeekdays(t *testing.T) {
	assert.Equal(t, []int{1, 3, 5}, Recurrence{Weekdays: []int{5, 3, 1, 5}}.NormalizedWeekdays())
	assert.Nil(t, Recurrence{}.NormalizedWeekdays())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-06-01T10:30:00Z", "2025-06-01T10:30:00Z"},
		{"2025-06-01T10:30:00.5+02:00", "2025-06-01T08:30:00.5Z"},
		{"2025-06-01T10:30:00", "2025-06-01T10:30:00Z"},
		{"2025-06-01T10:30", "2025-06-01T10:30:00Z"},
		{"2025-06-01", "2025-06-01T00:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format(time.RFC3339Nano))
		})
	}

	_, err := ParseDate("01/06/2025")
	assert.Error(t, err)
}
