package store

import (
	"fmt"
	"strings"

	"github.com/nhle/mcp-todo/internal/model"
)

// itemSelect reads items with their recurrence columns and tag names
// aggregated into one JSON array column. Every query using it must GROUP BY ti.id.
const itemSelect = `
	SELECT ti.id, ti.list_id, ti.title, ti.description, ti.assignee,
	       ti.priority, ti.status, ti.due_date, ti.snoozed_until,
	       ti.completed_at, ti.created_at, ti.updated_at,
	       r.type AS recurrence_type, r.weekdays, r.day_of_month, r.next_due,
	       json_group_array(t.name) FILTER (WHERE t.name IS NOT NULL) AS tags
	FROM todo_items ti
	LEFT JOIN recurrences r ON r.item_id = ti.id
	LEFT JOIN todo_tags tt ON tt.item_id = ti.id
	LEFT JOIN tags t ON t.id = tt.tag_id`

// predicate is one WHERE clause with the values bound to its placeholders.
type predicate struct {
	clause string
	args   []any
}

// itemQuery accumulates the parts of a search before rendering them.
type itemQuery struct {
	where   []predicate
	orderBy string
	limit   int
	offset  int
}

func (q *itemQuery) add(clause string, args ...any) {
	q.where = append(q.where, predicate{clause: clause, args: args})
}

// sql renders the query and its arguments in placeholder order.
func (q *itemQuery) sql() (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString(itemSelect)
	if len(q.where) > 0 {
		clauses := make([]string, len(q.where))
		for i, p := range q.where {
			clauses[i] = p.clause
			args = append(args, p.args...)
		}
		b.WriteString("\n\tWHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}
	b.WriteString("\n\tGROUP BY ti.id")
	b.WriteString("\n\tORDER BY ")
	b.WriteString(q.orderBy)

	if q.limit > 0 {
		b.WriteString("\n\tLIMIT ?")
		args = append(args, q.limit)
		if q.offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, q.offset)
		}
	}
	return b.String(), args
}

// likeEscaper makes LIKE wildcards in user text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// tagExists matches items linked to the named tag.
const tagExists = `EXISTS (
		SELECT 1 FROM todo_tags ftt
		JOIN tags ft ON ft.id = ftt.tag_id
		WHERE ftt.item_id = ti.id AND ft.name = ?)`

// priorityRank orders priorities by meaning rather than alphabetically.
var priorityRank = func() string {
	var b strings.Builder
	b.WriteString("CASE ti.priority")
	for i, p := range model.Priorities {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", p, i)
	}
	b.WriteString(" END")
	return b.String()
}()

var sortColumns = map[SortField]string{
	SortByDueDate:   "ti.due_date",
	SortByPriority:  priorityRank,
	SortByCreatedAt: "ti.created_at",
	SortByUpdatedAt: "ti.updated_at",
}

// buildItemQuery constructs the search SQL and its bound arguments.
// Every user value is bound; only whitelisted column and direction names
// are written into the SQL text.
func buildItemQuery(filter ItemFilter, sort ItemSort, page Page) (string, []any) {
	var q itemQuery

	if filter.ListID != "" {
		q.add("ti.list_id = ?", filter.ListID)
	}
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(filter.Query) + "%"
		q.add(`(ti.title LIKE ? ESCAPE '\' OR ti.description LIKE ? ESCAPE '\')`,
			pattern, pattern)
	}
	if filter.Assignee != "" {
		q.add("ti.assignee = ?", filter.Assignee)
	}
	if len(filter.Statuses) > 0 {
		args := make([]any, len(filter.Statuses))
		for i, st := range filter.Statuses {
			args[i] = string(st)
		}
		q.add("ti.status IN ("+placeholders(len(args))+")", args...)
	}
	if len(filter.Priorities) > 0 {
		args := make([]any, len(filter.Priorities))
		for i, p := range filter.Priorities {
			args[i] = string(p)
		}
		q.add("ti.priority IN ("+placeholders(len(args))+")", args...)
	}
	if filter.DueAfter != nil {
		q.add("ti.due_date >= ?", formatTime(*filter.DueAfter))
	}
	if filter.DueBefore != nil {
		q.add("ti.due_date <= ?", formatTime(*filter.DueBefore))
	}
	for _, tag := range uniqueTags(filter.Tags) {
		q.add(tagExists, tag)
	}

	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[SortByCreatedAt]
	}
	direction := "DESC"
	if sort.Order == SortAsc {
		direction = "ASC"
	}
	q.orderBy = fmt.Sprintf("%s %s, ti.rowid %s", column, direction, direction)

	q.limit = page.Limit
	q.offset = page.Offset

	return q.sql()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
