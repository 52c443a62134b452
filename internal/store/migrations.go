package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
//
// Timestamps are TEXT in timeLayout. Deleting a list removes its items;
// deleting an item removes its tag links and recurrence rule. Tags are
// never deleted.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS todo_lists (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS todo_items (
	id            TEXT PRIMARY KEY,
	list_id       TEXT REFERENCES todo_lists(id) ON DELETE CASCADE,
	title         TEXT NOT NULL,
	description   TEXT,
	assignee      TEXT,
	priority      TEXT NOT NULL DEFAULT 'none'
		CHECK(priority IN ('none', 'low', 'medium', 'high')),
	status        TEXT NOT NULL DEFAULT 'pending'
		CHECK(status IN ('pending', 'in_progress', 'completed', 'cancelled')),
	due_date      TEXT,
	snoozed_until TEXT,
	completed_at  TEXT,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_todo_items_list_id ON todo_items(list_id);
CREATE INDEX IF NOT EXISTS idx_todo_items_status ON todo_items(status);
CREATE INDEX IF NOT EXISTS idx_todo_items_assignee ON todo_items(assignee);
CREATE INDEX IF NOT EXISTS idx_todo_items_due_date ON todo_items(due_date);
CREATE INDEX IF NOT EXISTS idx_todo_items_created_at ON todo_items(created_at);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS todo_tags (
	item_id TEXT NOT NULL REFERENCES todo_items(id) ON DELETE CASCADE,
	tag_id  INTEGER NOT NULL REFERENCES tags(id),
	PRIMARY KEY (item_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_todo_tags_tag_id ON todo_tags(tag_id);

CREATE TABLE IF NOT EXISTS recurrences (
	item_id      TEXT PRIMARY KEY REFERENCES todo_items(id) ON DELETE CASCADE,
	type         TEXT NOT NULL
		CHECK(type IN ('daily', 'weekly', 'monthly', 'weekdays')),
	weekdays     TEXT,
	day_of_month INTEGER
		CHECK(day_of_month IS NULL OR day_of_month BETWEEN 1 AND 31),
	next_due     TEXT
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
