package store_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mcp-todo/internal/model"
	"github.com/nhle/mcp-todo/internal/store"
	"github.com/nhle/mcp-todo/tests/testutil"
)

func newTestList(t *testing.T, s *store.SQLiteStore) string {
	t.Helper()
	list, err := s.CreateList(t.Context(), "Test List", "")
	require.NoError(t, err)
	return list.ID
}

func ptr[T any](v T) *T { return &v }

func TestCreateItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()
	listID := newTestList(t, s)
	due := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID:      listID,
		Title:       "Test Todo",
		Description: "Test Description",
		Assignee:    "John Doe",
		Priority:    model.PriorityHigh,
		Status:      model.StatusPending,
		Tags:        []string{"work", "urgent"},
		DueDate:     &due,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, listID, item.ListID)
	assert.Equal(t, "Test Todo", item.Title)
	assert.Equal(t, "Test Description", item.Description)
	assert.Equal(t, "John Doe", item.Assignee)
	assert.Equal(t, model.PriorityHigh, item.Priority)
	assert.Equal(t, model.StatusPending, item.Status)
	assert.ElementsMatch(t, []string{"urgent", "work"}, item.Tags)
	require.NotNil(t, item.DueDate)
	assert.True(t, due.Equal(*item.DueDate))
	assert.Nil(t, item.SnoozedUntil)
	assert.Nil(t, item.CompletedAt)
	assert.Nil(t, item.Recurrence)

	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(*item, *got); diff != "" {
		t.Fatalf("item mismatch (-created +read):\n%s", diff)
	}
}

func TestCreateItem_Defaults(t *testing.T) {
	s := testutil.NewTestStore(t)

	item, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID: newTestList(t, s),
		Title:  "bare",
	})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityNone, item.Priority)
	assert.Equal(t, model.StatusPending, item.Status)
	assert.NotNil(t, item.Tags)
	assert.Empty(t, item.Tags)
}

func TestCreateItem_DuplicateTagsCollapse(t *testing.T) {
	s := testutil.NewTestStore(t)

	item, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID: newTestList(t, s),
		Title:  "dupes",
		Tags:   []string{"a", "b", "a"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, item.Tags)
}

func TestCreateItem_TagNamesRoundTripVerbatim(t *testing.T) {
	s := testutil.NewTestStore(t)
	names := []string{"a\x1fb", "comma,separated", `quote"d`, "[bracket]", "tab\there"}

	created, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID: newTestList(t, s),
		Title:  "odd tags",
		Tags:   names,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, names, created.Tags)

	items, err := s.SearchItems(t.Context(),
		store.ItemFilter{Tags: []string{"a\x1fb"}}, store.ItemSort{}, store.Page{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.ElementsMatch(t, names, items[0].Tags)
	assert.True(t, items[0].HasTag("a\x1fb"))
	assert.False(t, items[0].HasTag("a"))
}

func TestCreateItem_WithRecurrence(t *testing.T) {
	s := testutil.NewTestStore(t)
	next := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	item, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID:   newTestList(t, s),
		Title:    "Recurring Task",
		Priority: model.PriorityMedium,
		Recurrence: &model.Recurrence{
			Type:     model.RecurWeekly,
			Weekdays: []int{5, 1, 3, 3},
			NextDue:  &next,
		},
	})
	require.NoError(t, err)
	require.NotNil(t, item.Recurrence)
	assert.Equal(t, model.RecurWeekly, item.Recurrence.Type)
	assert.Equal(t, []int{1, 3, 5}, item.Recurrence.Weekdays)
	assert.Zero(t, item.Recurrence.DayOfMonth)
	require.NotNil(t, item.Recurrence.NextDue)
	assert.True(t, next.Equal(*item.Recurrence.NextDue))
}

func TestCreateItem_MonthlyRecurrence(t *testing.T) {
	s := testutil.NewTestStore(t)

	item, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID:     newTestList(t, s),
		Title:      "Rent",
		Recurrence: &model.Recurrence{Type: model.RecurMonthly, DayOfMonth: 28},
	})
	require.NoError(t, err)
	require.NotNil(t, item.Recurrence)
	assert.Equal(t, 28, item.Recurrence.DayOfMonth)
	assert.Nil(t, item.Recurrence.Weekdays)
	assert.Nil(t, item.Recurrence.NextDue)
}

func TestCreateItem_UnknownListFails(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.CreateItem(t.Context(), model.NewTodoItem{
		ListID: "no-such-list",
		Title:  "orphan",
	})
	require.Error(t, err)
}

func TestCreateItem_FailureLeavesNoRows(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	_, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID:     newTestList(t, s),
		Title:      "half written",
		Tags:       []string{"ghost"},
		Recurrence: &model.Recurrence{Type: "yearly"},
	})
	require.Error(t, err)

	var items, tags, links int
	_, err = s.Get(ctx, &items, "SELECT COUNT(*) FROM todo_items")
	require.NoError(t, err)
	_, err = s.Get(ctx, &tags, "SELECT COUNT(*) FROM tags")
	require.NoError(t, err)
	_, err = s.Get(ctx, &links, "SELECT COUNT(*) FROM todo_tags")
	require.NoError(t, err)
	assert.Zero(t, items)
	assert.Zero(t, tags)
	assert.Zero(t, links)
}

func TestGetItemByID_Unknown(t *testing.T) {
	s := testutil.NewTestStore(t)

	got, err := s.GetItemByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateItem_ReplacesTags(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID: newTestList(t, s),
		Title:  "tagged",
		Tags:   []string{"a", "b"},
	})
	require.NoError(t, err)

	updated, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{Tags: model.Some([]string{"c"})})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, []string{"c"}, updated.Tags)

	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.Tags)

	// Omitting tags leaves them alone; an empty set clears them.
	got, err = s.UpdateItem(ctx, item.ID, model.ItemPatch{Title: model.Some("renamed")})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, got.Tags)

	got, err = s.UpdateItem(ctx, item.ID, model.ItemPatch{Tags: model.Some([]string{})})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestUpdateItem_Recurrence(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID:     newTestList(t, s),
		Title:      "standup",
		Recurrence: &model.Recurrence{Type: model.RecurWeekdays},
	})
	require.NoError(t, err)

	t.Run("omitted recurrence is preserved", func(t *testing.T) {
		got, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{Assignee: model.Some("ann")})
		require.NoError(t, err)
		require.NotNil(t, got.Recurrence)
		assert.Equal(t, model.RecurWeekdays, got.Recurrence.Type)
	})

	t.Run("new rule replaces the old one", func(t *testing.T) {
		got, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{
			Recurrence: model.Some(&model.Recurrence{Type: model.RecurWeekly, Weekdays: []int{2}}),
		})
		require.NoError(t, err)
		require.NotNil(t, got.Recurrence)
		assert.Equal(t, model.RecurWeekly, got.Recurrence.Type)
		assert.Equal(t, []int{2}, got.Recurrence.Weekdays)

		var rules int
		_, err = s.Get(ctx, &rules, "SELECT COUNT(*) FROM recurrences WHERE item_id = ?", item.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, rules)
	})

	t.Run("explicit nil removes the rule", func(t *testing.T) {
		got, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{
			Recurrence: model.Some[*model.Recurrence](nil),
		})
		require.NoError(t, err)
		assert.Nil(t, got.Recurrence)
	})
}

func TestUpdateItem_ScalarFields(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()
	due := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID:      newTestList(t, s),
		Title:       "draft",
		Description: "words",
		DueDate:     &due,
	})
	require.NoError(t, err)

	got, err := s.UpdateItem(ctx, item.ID, model.ItemPatch{
		Title:       model.Some("final"),
		Description: model.Some(""),
		Priority:    model.Some(model.PriorityLow),
		Status:      model.Some(model.StatusInProgress),
		DueDate:     model.Some[*time.Time](nil),
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "final", got.Title)
	assert.Empty(t, got.Description)
	assert.Equal(t, model.PriorityLow, got.Priority)
	assert.Equal(t, model.StatusInProgress, got.Status)
	assert.Nil(t, got.DueDate)
	assert.Equal(t, item.CreatedAt, got.CreatedAt)
	assert.Equal(t, item.UpdatedAt, got.UpdatedAt, "updated_at is only set at creation")
}

func TestUpdateItem_FailureRollsBack(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID: newTestList(t, s),
		Title:  "stable",
		Tags:   []string{"keep"},
	})
	require.NoError(t, err)

	_, err = s.UpdateItem(ctx, item.ID, model.ItemPatch{
		Title:      model.Some("changed"),
		Tags:       model.Some([]string{"lost"}),
		Recurrence: model.Some(&model.Recurrence{Type: "hourly"}),
	})
	require.Error(t, err)

	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "stable", got.Title)
	assert.Equal(t, []string{"keep"}, got.Tags)
	assert.Nil(t, got.Recurrence)
}

func TestUpdateItem_Unknown(t *testing.T) {
	s := testutil.NewTestStore(t)

	got, err := s.UpdateItem(t.Context(), "missing", model.ItemPatch{Title: model.Some("x")})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMarkItemDone(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	item, err := s.CreateItem(ctx, model.NewTodoItem{ListID: newTestList(t, s), Title: "finish me"})
	require.NoError(t, err)

	done, err := s.MarkItemDone(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, done)
	assert.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.CompletedAt.After(item.CreatedAt))

	missing, err := s.MarkItemDone(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteItem(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()

	item, err := s.CreateItem(ctx, model.NewTodoItem{
		ListID:     newTestList(t, s),
		Title:      "bye",
		Tags:       []string{"t"},
		Recurrence: &model.Recurrence{Type: model.RecurDaily},
	})
	require.NoError(t, err)

	ok, err := s.DeleteItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetItemByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	var links, rules int
	_, err = s.Get(ctx, &links, "SELECT COUNT(*) FROM todo_tags WHERE item_id = ?", item.ID)
	require.NoError(t, err)
	_, err = s.Get(ctx, &rules, "SELECT COUNT(*) FROM recurrences WHERE item_id = ?", item.ID)
	require.NoError(t, err)
	assert.Zero(t, links)
	assert.Zero(t, rules)

	// The tag dictionary outlives the item.
	tags, err := s.GetTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "t", tags[0].Name)
	assert.Zero(t, tags[0].ItemCount)

	// Deleting an unknown id still reports success.
	ok, err = s.DeleteItem(ctx, "never-existed")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetTags_SharedDictionary(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := t.Context()
	listID := newTestList(t, s)

	for _, title := range []string{"one", "two"} {
		_, err := s.CreateItem(ctx, model.NewTodoItem{
			ListID: listID,
			Title:  title,
			Tags:   []string{"shared", title},
		})
		require.NoError(t, err)
	}

	tags, err := s.GetTags(ctx)
	require.NoError(t, err)

	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		counts[tag.Name] = tag.ItemCount
	}
	assert.Equal(t, map[string]int{"one": 1, "shared": 2, "two": 1}, counts)
}
